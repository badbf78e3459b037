package elks

type SendRequest struct {
	To      string
	From    string
	Message string
}
