package traffic

type Notification struct {
	Title   string
	Message string
}
