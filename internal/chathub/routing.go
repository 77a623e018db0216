package chathub

// Outcome says how a new message reaches its recipient.
type Outcome int

const (
	// Offline: the recipient has no open connection. The message is stored
	// unread and nothing is pushed to them.
	Offline Outcome = iota
	// NotifiedOnly: the recipient is online but not looking at the thread.
	NotifiedOnly
	// Delivered: the recipient has the thread open, so the message is
	// stored as read.
	Delivered
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case NotifiedOnly:
		return "notified"
	default:
		return "offline"
	}
}

// Delivery is the routing decision for one message. Notify lists the
// recipient connections that get a message notification.
type Delivery struct {
	Outcome Outcome
	Notify  []string
}

// Route decides delivery from whether the recipient is attached to the
// thread's group and which connections they have open anywhere.
func Route(recipientInRoom bool, recipientConnections []string) Delivery {
	switch {
	case recipientInRoom:
		return Delivery{Outcome: Delivered}
	case len(recipientConnections) > 0:
		return Delivery{Outcome: NotifiedOnly, Notify: recipientConnections}
	default:
		return Delivery{Outcome: Offline}
	}
}
