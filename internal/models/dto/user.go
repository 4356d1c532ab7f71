package dto

type CreateUserRequest struct {
	Username string `json:"username"`
}

type UpdateUserRequest struct {
	Username *string `json:"username"`
}
