package event

type Type string

const (
	TypeUserRegistered  Type = "user.registered"
	TypeUserLogin       Type = "user.login"
	TypeCompanySwitched Type = "company.switched"
)

// UserPayload accompanies user.registered and user.login events.
type UserPayload struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
}

// SwitchPayload accompanies company.switched events.
type SwitchPayload struct {
	UserPayload
	CompanyID   int64  `json:"company_id"`
	CompanyName string `json:"company_name"`
}

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
	ActorID   string `json:"actor_id,omitempty"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}
