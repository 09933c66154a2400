package models

// Attendance is the answer a guest gives on the RSVP form.
type Attendance string

const (
	AttendanceYes Attendance = "Hadir"
	AttendanceNo  Attendance = "Tidak Hadir"
)

func (a Attendance) Valid() bool {
	return a == AttendanceYes || a == AttendanceNo
}

type RSVP struct {
	BaseModel
	UserID     uint       `gorm:"not null;index" json:"userId"`
	GuestName  string     `gorm:"type:varchar(100);not null" json:"guestName"`
	Attendance Attendance `gorm:"type:varchar(20);not null;index" json:"attendance"`
	Guests     int        `gorm:"not null" json:"guests"`
}

func (RSVP) TableName() string { return "rsvps" }
