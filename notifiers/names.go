package notifiers

const (
	// Identifier for email notifier.
	NameSMTP = "smtp"

	// Identifier for notifier which writes messages to a log.
	NameLog = "log"
)
