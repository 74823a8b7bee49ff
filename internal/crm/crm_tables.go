package crm

import "go-workdesk/internal/store"

// Tables bundles the typed accessors for every CRM/billing table. The
// screens over these are routine CRUD; the store-level contract (atomic
// calls, live subscriptions) is all they need.
type Tables struct {
	Leads        *store.Table[Lead]
	Contacts     *store.Table[Contact]
	Companies    *store.Table[Company]
	Products     *store.Table[Product]
	Quotations   *store.Table[Quotation]
	CompanyLinks *store.Table[CompanyLink]
	Wallets      *store.Table[Wallet]
	Transactions *store.Table[Transaction]
	Plans        *store.Table[SubscriptionPlan]
	AIUsage      *store.Table[AIUsageLog]
}

func NewTables(s *store.Store) (*Tables, error) {
	t := &Tables{}
	var err error
	if t.Leads, err = store.NewTable[Lead](s, LeadTableName, func(r Lead) string { return r.ID }); err != nil {
		return nil, err
	}
	if t.Contacts, err = store.NewTable[Contact](s, ContactTableName, func(r Contact) string { return r.ID }); err != nil {
		return nil, err
	}
	if t.Companies, err = store.NewTable[Company](s, CompanyTableName, func(r Company) string { return r.ID }); err != nil {
		return nil, err
	}
	if t.Products, err = store.NewTable[Product](s, ProductTableName, func(r Product) string { return r.ID }); err != nil {
		return nil, err
	}
	if t.Quotations, err = store.NewTable[Quotation](s, QuotationTableName, func(r Quotation) string { return r.ID }); err != nil {
		return nil, err
	}
	if t.CompanyLinks, err = store.NewTable[CompanyLink](s, CompanyLinkTableName, func(r CompanyLink) string { return r.ID }); err != nil {
		return nil, err
	}
	if t.Wallets, err = store.NewTable[Wallet](s, WalletTableName, func(r Wallet) string { return r.ID }); err != nil {
		return nil, err
	}
	if t.Transactions, err = store.NewTable[Transaction](s, TransactionTableName, func(r Transaction) string { return r.ID }); err != nil {
		return nil, err
	}
	if t.Plans, err = store.NewTable[SubscriptionPlan](s, SubscriptionPlanTableName, func(r SubscriptionPlan) string { return r.ID }); err != nil {
		return nil, err
	}
	if t.AIUsage, err = store.NewTable[AIUsageLog](s, AIUsageLogTableName, func(r AIUsageLog) string { return r.ID }); err != nil {
		return nil, err
	}
	return t, nil
}
