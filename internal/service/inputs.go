package service

import "storefront-api/internal/core/pagination"

// ListInput is the query string shared by every list endpoint.
type ListInput struct {
	Page    string `form:"page"`
	Limit   string `form:"limit"`
	OrderBy string `form:"orderBy" binding:"omitempty,orderby"`
}

func (in ListInput) Params() pagination.Params { return pagination.ParseParams(in.Page, in.Limit) }

type UserListInput struct {
	ListInput
	Search string `form:"search"`
}

type PartnerListInput struct {
	ListInput
	Name       string `form:"name"`
	CategoryID *uint  `form:"categoryId"`
}

type CreateUserInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,min=2,max=255"`
	Phone    string `json:"phone" binding:"required,min=8,phone"`
	Document string `json:"document" binding:"omitempty,document"`
}

type AuthInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type VerifyEmailInput struct {
	VerificationCode string `json:"verificationCode" binding:"required"`
}

type EmailInput struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordInput struct {
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=8"`
	VerificationCode string `json:"verificationCode" binding:"required"`
}

type UpdateUserInput struct {
	Name     string `json:"name" binding:"required,min=2,max=255"`
	Phone    string `json:"phone" binding:"required,min=8,phone"`
	Document string `json:"document" binding:"required,min=11,document"`
}

type CreateCategoryInput struct {
	Name        string `json:"name" binding:"required,min=3,max=255"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail" binding:"omitempty,max=512"`
	ParentID    *uint  `json:"parentId"`
}

type UpdateCategoryInput struct {
	Name        *string `json:"name" binding:"omitempty,min=3,max=255"`
	Description *string `json:"description"`
	Thumbnail   *string `json:"thumbnail" binding:"omitempty,max=512"`
}

type CreateProductInput struct {
	Name        string   `json:"name" binding:"required,min=3,max=255"`
	Description string   `json:"description" binding:"required"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Quantity    *int     `json:"quantity" binding:"omitempty,gte=0"`
	Type        string   `json:"type" binding:"required,oneof=physical digital service"`
	Thumbnail   string   `json:"thumbnail" binding:"omitempty,max=512"`
}

type UpdateProductInput struct {
	Name        *string  `json:"name" binding:"omitempty,min=3,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Quantity    *int     `json:"quantity" binding:"omitempty,gte=0"`
	Type        *string  `json:"type" binding:"omitempty,oneof=physical digital service"`
	Thumbnail   *string  `json:"thumbnail" binding:"omitempty,max=512"`
}

type CreatePartnerInput struct {
	Name       string `json:"name" binding:"required,min=3,max=255"`
	CategoryID uint   `json:"categoryId" binding:"required"`
	Thumbnail  string `json:"thumbnail" binding:"omitempty,max=512"`
}

type UpdatePartnerInput struct {
	Name       *string `json:"name" binding:"omitempty,min=3,max=255"`
	CategoryID *uint   `json:"categoryId"`
	Thumbnail  *string `json:"thumbnail" binding:"omitempty,max=512"`
}
