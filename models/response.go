package models

type RegisterSuccessResponse struct {
	Message string `json:"message" example:"User registered successfully (by admin)"`
	UserID  string `json:"user_id" example:"507f1f77bcf86cd799439011"`
}

type LoginSuccessResponse struct {
	Message      string `json:"message" example:"Login successful"`
	Token        string `json:"token" example:"v2.local.Ft9QcxZhJXEYyb7-bMM..."`
	UserID       string `json:"user_id" example:"507f1f77bcf86cd799439011"`
	Role         string `json:"role" example:"employee"`
	IsFirstLogin bool   `json:"is_first_login" example:"true"`
}

type ChangePasswordSuccessResponse struct {
	Message string `json:"message" example:"Password changed successfully."`
}

type CheckSuccessResponse struct {
	Message   string  `json:"message" example:"Checked in successfully"`
	Type      string  `json:"type" example:"checkin"`
	DistanceM float64 `json:"distance_m" example:"42.7"`
	AccuracyM float64 `json:"accuracy_m" example:"14"`
}

type CheckDeniedResponse struct {
	Error     string  `json:"error" example:"Out of range"`
	Reason    string  `json:"reason" example:"out_of_range"`
	DistanceM float64 `json:"distance_m" example:"182.3"`
	AccuracyM float64 `json:"accuracy_m" example:"14"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid request body"`
	Details string `json:"details,omitempty" example:"validation failed"`
}

type UnauthorizedErrorResponse struct {
	Error string `json:"error" example:"Invalid or missing token"`
}

type ForbiddenErrorResponse struct {
	Error string `json:"error" example:"Access denied. Admin privileges required"`
}

type LogoutSuccessResponse struct {
	Message string `json:"message" example:"Logout successful. Please remove the token on the client side."`
}
