package model

type RegisterRequest struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Roles     []string `json:"roles,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SwitchCompanyRequest struct {
	CompanyID int64 `json:"company_id"`
}

type CompanyRequest struct {
	Name         string `json:"name"`
	PrimaryEmail string `json:"primary_email"`
	Enabled      *bool  `json:"enabled,omitempty"`
}

type ItemCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type InventoryItemRequest struct {
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	CategoryID  int64   `json:"category_id"`
}

type CountryRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type EmailConfigRequest struct {
	SMTPHost    string `json:"smtp_host"`
	SMTPPort    int    `json:"smtp_port"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	FromAddress string `json:"from_address"`
	Enabled     *bool  `json:"enabled,omitempty"`
}

type UpdateRolesRequest struct {
	Roles []string `json:"roles"`
}

type MembershipRequest struct {
	CompanyID int64 `json:"company_id"`
}
