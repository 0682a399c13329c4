package request

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusReceived  Status = "received"
	StatusFinalized Status = "finalized"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusReceived, StatusFinalized:
		return true
	}
	return false
}

// StatusRank orders dashboard listings: open work first, unknown last.
func StatusRank(s Status) int {
	switch s {
	case StatusPending:
		return 1
	case StatusReceived:
		return 2
	case StatusFinalized:
		return 3
	}
	return 4
}

type Coordinates struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

type Request struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// OwnerID is the agent who opened the case.
	OwnerID uint64 `gorm:"index;not null" json:"owner_id"`

	RequesterName string `gorm:"type:varchar(255);not null" json:"requester_name"`
	Phone         string `gorm:"type:varchar(20);not null" json:"phone"`

	Status Status `gorm:"type:varchar(50);not null;default:pending" json:"status"`

	// LinkToken is the sole credential for the requester-facing flow.
	LinkToken     string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"link_token"`
	LinkExpiresAt time.Time `gorm:"not null" json:"link_expires_at"`

	Coordinates *Coordinates `gorm:"serializer:json;type:text" json:"coordinates"`

	// Address fields are filled asynchronously by the geocode worker.
	Address  string `gorm:"type:varchar(500)" json:"address"`
	City     string `gorm:"type:varchar(255)" json:"city"`
	Street   string `gorm:"type:varchar(500)" json:"street"`
	PlusCode string `gorm:"type:varchar(20)" json:"plus_code"`

	Archived   bool       `gorm:"not null;default:false;index" json:"archived"`
	ArchivedAt *time.Time `json:"archived_at"`

	// Set when the case is finalized; chat closes once it passes.
	ChatExpiresAt *time.Time `json:"chat_expires_at"`

	PushSubscription *string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Request) TableName() string { return "requests" }

type Sender string

const (
	SenderAgent     Sender = "agent"
	SenderRequester Sender = "requester"
)

func ValidSender(s Sender) bool {
	return s == SenderAgent || s == SenderRequester
}

func OppositeSender(s Sender) Sender {
	if s == SenderAgent {
		return SenderRequester
	}
	return SenderAgent
}

type Kind string

const (
	KindText  Kind = "text"
	KindAudio Kind = "audio"
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindFile  Kind = "file"
)

func ValidKind(k Kind) bool {
	switch k {
	case KindText, KindAudio, KindImage, KindVideo, KindFile:
		return true
	}
	return false
}

type Message struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestID uint64  `gorm:"index;not null" json:"request_id"`
	Sender    Sender  `gorm:"type:varchar(50);not null" json:"sender"`
	Kind      Kind    `gorm:"type:varchar(20);not null;default:text" json:"kind"`
	Content   string  `gorm:"type:text;not null" json:"content"`
	MediaURL  *string `gorm:"type:varchar(500)" json:"media_url"`
	FileName  *string `gorm:"type:varchar(255)" json:"file_name"`
	// Read only ever flips false -> true.
	Read      bool      `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func (Message) TableName() string { return "messages" }
