package jwttoken

import (
	"kycgate/internal/platform/middleware"
)

// JWTServiceAdapter bridges the JWT service to the middleware's
// TokenValidator interface.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.StaffClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.StaffClaims{
		StaffID: claims.StaffID,
		Branch:  claims.Branch,
	}, nil
}
