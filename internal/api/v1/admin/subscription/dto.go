package subscription

import "partnerhub-backend/internal/models"

type SetStatusRequest struct {
	UserID    string                    `json:"user_id" binding:"required,max=64"`
	PartnerID string                    `json:"partner_id" binding:"required,max=64"`
	Status    models.SubscriptionStatus `json:"status" binding:"required,oneof=active freemium"`
}

type StatusResponse struct {
	UserID    string                    `json:"user_id"`
	PartnerID string                    `json:"partner_id"`
	Status    models.SubscriptionStatus `json:"status"`
}
