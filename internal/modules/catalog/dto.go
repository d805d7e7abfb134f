package catalog

type CreateServiceRequest struct {
	Name        string  `json:"name" validate:"required,max=128"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description" validate:"max=2000"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=128"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
}
