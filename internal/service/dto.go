package service

import (
	"time"

	"civic-registry/internal/domain"
)

// UserDTO is the client shape of an account. The password hash never leaves
// the service layer.
type UserDTO struct {
	ID        int64       `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Direction *string     `json:"direction"`
	IsActive  bool        `json:"isActive"`
	CreatedAt time.Time   `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		Direction: nullString(u.Direction),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// PersonDTO is the client shape of a citizen record.
type PersonDTO struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Age           int       `json:"age"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	Ward          string    `json:"ward"`
	Street        string    `json:"street"`
	Direction     string    `json:"direction"`
	AadharNumber  string    `json:"aadharNumber"`
	PanNumber     string    `json:"panNumber"`
	VoterIDNumber *string   `json:"voterIdNumber"`
	Gender        string    `json:"gender"`
	Religion      string    `json:"religion"`
	Caste         string    `json:"caste"`
	Community     string    `json:"community"`
	CreatedBy     string    `json:"createdBy"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toPersonDTO(p *domain.Person) PersonDTO {
	return PersonDTO{
		ID:            p.ID,
		Name:          p.Name,
		Age:           p.Age,
		Phone:         p.Phone,
		Address:       p.Address,
		Ward:          p.Ward,
		Street:        p.Street,
		Direction:     string(p.Direction),
		AadharNumber:  p.AadharNumber,
		PanNumber:     p.PanNumber,
		VoterIDNumber: nullString(p.VoterIDNumber),
		Gender:        p.Gender,
		Religion:      p.Religion,
		Caste:         p.Caste,
		Community:     p.Community,
		CreatedBy:     p.CreatedBy,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// TemplateDTO is the client shape of a template.
type TemplateDTO struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedBy int64     `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toTemplateDTO(t *domain.Template) TemplateDTO {
	return TemplateDTO{
		ID:        t.ID,
		Title:     t.Title,
		Body:      t.Body,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// MessageDTO is the client shape of a campaign record.
type MessageDTO struct {
	ID             int64                  `json:"id"`
	SenderID       int64                  `json:"senderId"`
	Direction      *string                `json:"direction"`
	TemplateID     *int64                 `json:"templateId"`
	Recipients     []string               `json:"recipients"`
	Message        string                 `json:"message"`
	Status         string                 `json:"status"`
	DeliveryReport []domain.DeliveryEntry `json:"deliveryReport"`
	SentAt         *time.Time             `json:"sentAt"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

func toMessageDTO(m *domain.Message) MessageDTO {
	dto := MessageDTO{
		ID:             m.ID,
		SenderID:       m.SenderID,
		Direction:      nullString(m.Direction),
		Recipients:     m.Recipients,
		Message:        m.Body,
		Status:         m.Status,
		DeliveryReport: m.DeliveryReport,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.TemplateID.Valid {
		id := m.TemplateID.Int64
		dto.TemplateID = &id
	}
	if m.SentAt.Valid {
		t := m.SentAt.Time
		dto.SentAt = &t
	}
	if dto.Recipients == nil {
		dto.Recipients = []string{}
	}
	if dto.DeliveryReport == nil {
		dto.DeliveryReport = []domain.DeliveryEntry{}
	}
	return dto
}
