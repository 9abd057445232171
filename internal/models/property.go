package models

// Property - объявление об аренде в каталоге.
type Property struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Price          float64  `json:"price"`
	City           string   `json:"city"`
	Locality       string   `json:"locality"`
	Type           string   `json:"type"`
	Gender         string   `json:"gender"`
	Images         []string `json:"images"`
	HostID         int64    `json:"host_id"`
	ApprovalStatus string   `json:"approval_status"`
}

// HostInfo - контакт владельца в детальной карточке объявления.
type HostInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// PropertyDetail - детальная карточка: объявление + владелец.
type PropertyDetail struct {
	Property
	Host HostInfo `json:"host"`
}

// PropertiesPage - страница каталога с offset-пагинацией.
type PropertiesPage struct {
	Items   []Property `json:"items"`
	Total   int        `json:"total"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
}
