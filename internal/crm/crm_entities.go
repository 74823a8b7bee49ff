// Package crm holds the sales and billing tables. They share the ownership
// pattern of the rest of the store: independently keyed rows with string
// foreign keys, no enforced referential integrity, resolved by lookup.
package crm

import "time"

const (
	LeadTableName             = "leads"
	ContactTableName          = "contacts"
	CompanyTableName          = "companies"
	ProductTableName          = "products"
	QuotationTableName        = "quotations"
	CompanyLinkTableName      = "company_links"
	WalletTableName           = "wallets"
	TransactionTableName      = "wallet_transactions"
	SubscriptionPlanTableName = "subscription_plans"
	AIUsageLogTableName       = "ai_usage_logs"
)

type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CompanyID string    `json:"companyId,omitempty"`
	OwnerID   string    `json:"ownerId"`
	Stage     string    `json:"stage"`
	Value     float64   `json:"value,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CompanyID string    `json:"companyId,omitempty"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Industry  string    `json:"industry,omitempty"`
	Website   string    `json:"website,omitempty"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku,omitempty"`
	Price     float64   `json:"price"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

type QuotationLine struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type Quotation struct {
	ID        string          `json:"id"`
	CompanyID string          `json:"companyId"`
	OwnerID   string          `json:"ownerId"`
	Lines     []QuotationLine `json:"lines,omitempty"`
	Total     float64         `json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

// CompanyLink associates a user with a company they may act for.
type CompanyLink struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CompanyID string    `json:"companyId"`
	Relation  string    `json:"relation,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Wallet struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Balance   float64   `json:"balance"`
	Currency  string    `json:"currency"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Transaction struct {
	ID        string    `json:"id"`
	WalletID  string    `json:"walletId"`
	Amount    float64   `json:"amount"`
	Kind      string    `json:"kind"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type SubscriptionPlan struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PricePerSeat float64   `json:"pricePerSeat"`
	Features     []string  `json:"features,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

type AIUsageLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Feature   string    `json:"feature"`
	Tokens    int       `json:"tokens"`
	CreatedAt time.Time `json:"createdAt"`
}
