package logkey

// Keys shared by every structured log line.
const (
	TraceID   = "TRACE ID"
	ERROR     = "ERROR"
	ProductID = "ProductID"
	Quantity  = "Quantity"
	Screen    = "Screen"
	Op        = "Op"
	Subject   = "Subject"
)
