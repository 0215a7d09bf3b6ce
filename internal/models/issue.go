package models

import "time"

// Reporter person who filed an issue. Anonymous reporters keep only the flag.
type Reporter struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	FullName  string    `gorm:"type:varchar(255)" json:"full_name"`
	Email     string    `gorm:"type:varchar(255);index" json:"email"`
	Phone     string    `gorm:"type:varchar(32);index" json:"phone"`
	Anonymous bool      `gorm:"not null;default:false" json:"anonymous"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName table name
func (Reporter) TableName() string {
	return "reporters"
}

// ImplicatedPersonnel person named in the report
type ImplicatedPersonnel struct {
	Name       string `json:"name"`
	Position   string `json:"position"`
	Department string `json:"department"`
}

// Malpractice what was reported
type Malpractice struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Location    string `json:"location"`
	OccurredOn  string `json:"occurredOn"`
}

// Issue reported case. Ref is the only handle exposed outside the database and never changes.
type Issue struct {
	ID                  uint                `gorm:"primarykey" json:"-"`
	Ref                 string              `gorm:"type:varchar(36);uniqueIndex;not null" json:"ref"`
	ReporterID          *uint               `gorm:"index" json:"-"`
	Reporter            *Reporter           `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	ImplicatedPersonnel ImplicatedPersonnel `gorm:"type:text;serializer:json" json:"implicatedPersonnel"`
	Malpractice         Malpractice         `gorm:"type:text;serializer:json" json:"malpractice"`
	Status              string              `gorm:"type:varchar(32);index;not null" json:"status"`
	Source              string              `gorm:"type:varchar(16);index;not null" json:"source"`
	Attachment          string              `gorm:"type:varchar(255)" json:"attachment,omitempty"`
	Responses           []IssueResponse     `gorm:"foreignKey:IssueID" json:"responses,omitempty"`
	CreatedAt           time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// TableName table name
func (Issue) TableName() string {
	return "issues"
}

// IssueResponse admin message to the reporter
type IssueResponse struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	IssueID   uint      `gorm:"index;not null" json:"-"`
	AdminID   uint      `gorm:"index;not null" json:"-"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName table name
func (IssueResponse) TableName() string {
	return "issue_responses"
}
