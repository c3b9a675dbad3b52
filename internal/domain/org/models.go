package org

import "time"

type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	AppName   string    `json:"appName"`
	CreatedAt time.Time `json:"createdAt"`
}

type Profile struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Email          string    `json:"email"`
	FullName       string    `json:"fullName"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	Department     string    `json:"department"`
	JobTitle       string    `json:"jobTitle"`
	JobLevel       string    `json:"jobLevel"`
	ManagerID      string    `json:"managerId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type WelcomeMessage struct {
	OrganizationID string    `json:"organizationId"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
