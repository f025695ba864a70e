package dto

type LoginDTO struct {
	Secret string `json:"secret" binding:"required"`
}
