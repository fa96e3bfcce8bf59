package domain

import "time"

// CacheSlot is a single key/value slot of the local durable cache. The value
// holds the full JSON-serialized list of records for that key and is
// rewritten as a whole on every append.
type CacheSlot struct {
	Key       string    `gorm:"type:varchar(128);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the database table name for CacheSlot.
func (CacheSlot) TableName() string { return "cache_slots" }

// ClientRequest is a submission record as received by the relay endpoint.
//
// Fields:
//   - ID: server-side UUID primary key (char(36)).
//   - RecordID: the submitter-side record id; unique so a record is stored once.
//   - CreatedAt: the record's own timestamp.
//   - ReceivedAt: when the server stored it; used for ordering and ETags.
type ClientRequest struct {
	ID             string    `json:"-"              gorm:"type:char(36);primaryKey"`
	RecordID       int64     `json:"id"             gorm:"not null;uniqueIndex:ux_client_requests_record"`
	CreatedAt      time.Time `json:"timestamp"      gorm:"not null"`
	Name           string    `json:"name"           gorm:"type:varchar(255);not null"`
	Email          string    `json:"email"          gorm:"type:varchar(255);not null"`
	Phone          string    `json:"phone"          gorm:"type:varchar(64);not null"`
	WhatsApp       *string   `json:"whatsapp"       gorm:"type:varchar(64)"`
	ProductDetails string    `json:"productDetails" gorm:"type:text;not null"`
	ImageFile      *string   `json:"imageFile"      gorm:"type:varchar(255)"`
	ReceivedAt     time.Time `json:"receivedAt"     gorm:"not null;index:idx_client_requests_received"`
}

// TableName returns the database table name for ClientRequest.
func (ClientRequest) TableName() string { return "client_requests" }

// Record converts the stored row back into the wire record.
func (c ClientRequest) Record() SubmissionRecord {
	return SubmissionRecord{
		ID:                c.RecordID,
		CreatedAt:         c.CreatedAt,
		Name:              c.Name,
		Email:             c.Email,
		Phone:             c.Phone,
		WhatsApp:          cloneStr(c.WhatsApp),
		ProductDetails:    c.ProductDetails,
		AttachedImageName: cloneStr(c.ImageFile),
	}
}
