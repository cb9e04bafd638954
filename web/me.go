package main

import (
	"axiapac.com/personnel/web/common"
	"github.com/gin-gonic/gin"
)

type PrincipalDTO struct {
	Subject     string   `json:"subject"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	PersonnelID *uint    `json:"personnelId"`
}

// principalDTO reports the caller with its effective permission set, which
// the admin UI uses to hide menu entries.
func principalDTO(c *gin.Context) PrincipalDTO {
	p := common.CurrentPrincipal(c)
	return PrincipalDTO{
		Subject:     p.Subject,
		Name:        p.Name,
		Role:        string(p.Role),
		Permissions: p.Effective().Strings(),
		PersonnelID: p.PersonnelID,
	}
}
