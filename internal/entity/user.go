package entity

import (
	"context"
	"fmt"
	"net/url"
)

// User é o perfil exposto ao cliente depois do login.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Avatar     string `json:"avatar,omitempty"`
	ClinicID   string `json:"clinicId"`
	ClinicName string `json:"clinicName"`
}

// Profile espelha `perfis` com o nome fantasia da clínica.
type Profile struct {
	ID         string
	FullName   string
	Role       string
	AvatarURL  string
	ClinicID   string
	ClinicName string
}

func (p Profile) ToUser(email string) User {
	avatar := p.AvatarURL
	if avatar == "" {
		avatar = fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=6366f1&color=fff", url.QueryEscape(p.FullName))
	}
	clinicName := p.ClinicName
	if clinicName == "" {
		clinicName = "Minha Clínica"
	}
	return User{
		ID:         p.ID,
		Name:       p.FullName,
		Email:      email,
		Role:       p.Role,
		Avatar:     avatar,
		ClinicID:   p.ClinicID,
		ClinicName: clinicName,
	}
}

type ProfileRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*Profile, error)
}
