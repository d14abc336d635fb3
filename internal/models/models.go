package models

import "time"

type Role string

const (
	RoleResident Role = "resident"
	RoleAdmin    Role = "admin"
)

type Vehicle struct {
	Number string `json:"number"`
	Model  string `json:"model"`
}

// User is the persisted identity. PasswordHash never leaves the service layer;
// clients receive a Profile instead.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Name         string
	Email        string
	Phone        string
	Room         string
	Company      string
	Role         Role
	Verified     bool
	Vehicles     []Vehicle
	AccessCardID *string
	EmployeeID   *string
	ProfileImage *string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Profile is the client-facing projection of a User.
type Profile struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Company      string     `json:"company"`
	Room         string     `json:"room"`
	Phone        string     `json:"phone"`
	Role         Role       `json:"role"`
	Verified     bool       `json:"isVerified"`
	Vehicles     []Vehicle  `json:"vehicles"`
	AccessCardID *string    `json:"accessCardId,omitempty"`
	EmployeeID   *string    `json:"employeeId,omitempty"`
	ProfileImage *string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLoginAt  *time.Time `json:"lastLogin,omitempty"`
}

func (u User) Profile() Profile {
	vehicles := u.Vehicles
	if vehicles == nil {
		vehicles = []Vehicle{}
	}
	return Profile{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		Email:        u.Email,
		Company:      u.Company,
		Room:         u.Room,
		Phone:        u.Phone,
		Role:         u.Role,
		Verified:     u.Verified,
		Vehicles:     vehicles,
		AccessCardID: u.AccessCardID,
		EmployeeID:   u.EmployeeID,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
		LastLoginAt:  u.LastLoginAt,
	}
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type ComplaintStatus string

const (
	ComplaintPending    ComplaintStatus = "Pending"
	ComplaintProcessing ComplaintStatus = "Processing"
	ComplaintComplete   ComplaintStatus = "Complete"
)

func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintPending, ComplaintProcessing, ComplaintComplete:
		return true
	}
	return false
}

type Complaint struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	Priority   Priority        `json:"priority"`
	Status     ComplaintStatus `json:"status"`
	AuthorID   string          `json:"author"`
	AuthorName string          `json:"authorName"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// ComplaintPatch carries the author-editable fields. Nil means unchanged.
type ComplaintPatch struct {
	Title    *string
	Content  *string
	Priority *Priority
}

type CardStatus string

const (
	CardPending    CardStatus = "Pending"
	CardProcessing CardStatus = "Processing"
	CardApproved   CardStatus = "Approved"
	CardRejected   CardStatus = "Rejected"
)

func (s CardStatus) Valid() bool {
	switch s {
	case CardPending, CardProcessing, CardApproved, CardRejected:
		return true
	}
	return false
}

type MoveInCard struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user"`
	Name           string     `json:"name"`
	Company        string     `json:"company"`
	EmployeeID     string     `json:"employeeId,omitempty"`
	Phone          string     `json:"phone"`
	Room           string     `json:"room"`
	VehicleCount   int        `json:"vehicleCount"`
	Vehicles       []Vehicle  `json:"vehicles"`
	HouseholdCount int        `json:"householdCount"`
	Status         CardStatus `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// CardApproval is the outcome of moving a card to Approved.
type CardApproval struct {
	Card         MoveInCard
	User         User
	CardIDIssued bool
}

const (
	NoticeCategoryInspection = "점검"
	NoticeCategorySafety     = "안전"
	NoticeCategoryEvent      = "행사"
	NoticeCategoryGeneral    = "일반"
	NoticeCategoryNotice     = "공지"

	NoticeCategoryAll   = "전체"
	DefaultNoticeAuthor = "관리사무소"
)

func ValidNoticeCategory(c string) bool {
	switch c {
	case NoticeCategoryInspection, NoticeCategorySafety, NoticeCategoryEvent, NoticeCategoryGeneral, NoticeCategoryNotice:
		return true
	}
	return false
}

type Notice struct {
	ID        string    `json:"id"`
	Category  string    `json:"type"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Views     int       `json:"views"`
	CreatedAt time.Time `json:"createdAt"`
}

type NoticeQuery struct {
	Category string
	Page     int
	Limit    int
}

type NoticePage struct {
	Notices     []Notice `json:"notices"`
	TotalPages  int      `json:"totalPages"`
	CurrentPage int      `json:"currentPage"`
	Total       int      `json:"total"`
}

type ElevatorStatus struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Note   string `json:"note"`
}

type ParkingStatus struct {
	Occupied int `json:"occupied"`
	Total    int `json:"total"`
	Percent  int `json:"percent"`
}

type MaintenanceStatus struct {
	LastCheck string `json:"lastCheck"`
	Status    string `json:"status"`
}

type BuildingStatus struct {
	Parking                   ParkingStatus     `json:"parking"`
	Elevators                 []ElevatorStatus  `json:"elevators"`
	Maintenance               MaintenanceStatus `json:"maintenance"`
	ActiveComplaintsCount     int               `json:"activeComplaintsCount"`
	ProcessingComplaintsCount int               `json:"processingComplaintsCount"`
	PendingComplaintsCount    int               `json:"pendingComplaintsCount"`
	CompleteComplaintsCount   int               `json:"completeComplaintsCount"`
}
