package elks

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/meddela/dispatch/pkg/httpclient"
)

const (
	SendEndpoint    = "/a1/sms"
	BalanceEndpoint = "/a1/me"
	HistoryEndpoint = "/a1/sms"
)

var phonePattern = regexp.MustCompile(`^\+\d{1,15}$`)

// ValidatePhone reports whether number is E.164 shaped: a plus sign
// followed by 1 to 15 digits.
func ValidatePhone(number string) bool {
	return phonePattern.MatchString(number)
}

type Client interface {
	Send(ctx context.Context, request SendRequest) (SendResponse, *SendError)
	Balance(ctx context.Context) (BalanceResponse, error)
	History(ctx context.Context, limit int) (HistoryResponse, error)
}

type client struct {
	cfg    Config
	client httpclient.HTTPClient
}

func NewClient(cfg Config, httpClient httpclient.HTTPClient) Client {
	return &client{cfg: cfg, client: httpClient}
}

func (c *client) Send(ctx context.Context, request SendRequest) (SendResponse, *SendError) {
	if c.cfg.Username == "" || c.cfg.Password == "" {
		return SendResponse{}, newSendError(ErrorCodeConfig, "gateway credentials are not configured")
	}

	if !ValidatePhone(request.To) {
		return SendResponse{}, newSendError(ErrorCodeInvalidNumber, "recipient is not a valid E.164 number")
	}

	form := url.Values{}
	form.Set("to", request.To)
	form.Set("from", request.From)
	form.Set("message", request.Message)
	if c.cfg.WebhookURL != "" {
		form.Set("whendelivered", c.cfg.WebhookURL)
	}
	if c.cfg.DryRun {
		form.Set("dryrun", "yes")
	}

	resp, err := c.client.Post(ctx, c.cfg.BaseURL+SendEndpoint, strings.NewReader(form.Encode()), c.headers())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return SendResponse{}, newSendError(ErrorCodeTimeout, err.Error())
		}

		return SendResponse{}, newSendError(ErrorCodeNetwork, err.Error())
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return SendResponse{}, mapStatusToSendError(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var res SendResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return SendResponse{}, newSendError(ErrorCodeServer, "failed to decode gateway response")
	}

	return res, nil
}

func (c *client) Balance(ctx context.Context) (BalanceResponse, error) {
	if c.cfg.Username == "" || c.cfg.Password == "" {
		return BalanceResponse{}, errors.New(ErrorCodeConfig)
	}

	resp, err := c.client.Get(ctx, c.cfg.BaseURL+BalanceEndpoint, c.headers())
	if err != nil {
		return BalanceResponse{}, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return BalanceResponse{}, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var res BalanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return BalanceResponse{}, err
	}

	return res, nil
}

func (c *client) History(ctx context.Context, limit int) (HistoryResponse, error) {
	if c.cfg.Username == "" || c.cfg.Password == "" {
		return HistoryResponse{}, errors.New(ErrorCodeConfig)
	}

	endpoint := fmt.Sprintf("%s%s?limit=%d", c.cfg.BaseURL, HistoryEndpoint, limit)

	resp, err := c.client.Get(ctx, endpoint, c.headers())
	if err != nil {
		return HistoryResponse{}, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return HistoryResponse{}, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var res HistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return HistoryResponse{}, err
	}

	return res, nil
}

func (c *client) headers() map[string]string {
	auth := base64.StdEncoding.EncodeToString([]byte(c.cfg.Username + ":" + c.cfg.Password))

	return map[string]string{
		"Authorization": "Basic " + auth,
		"Content-Type":  "application/x-www-form-urlencoded",
	}
}
