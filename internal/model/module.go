package model

// Module is a globally defined feature unit assignable to departments.
type Module struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	URLPath     string `json:"url_path"`
	Icon        string `json:"icon"`
	Active      bool   `json:"active"`
	Audit
}

type CreateModuleRequest struct {
	Name        string `json:"name" binding:"required"`
	DisplayName string `json:"display_name"`
	URLPath     string `json:"url_path"`
	Icon        string `json:"icon"`
	Active      *bool  `json:"active"`
}

type UpdateModuleRequest struct {
	DisplayName *string `json:"display_name"`
	URLPath     *string `json:"url_path"`
	Icon        *string `json:"icon"`
	Active      *bool   `json:"active"`
}
