package events

// Topic constants for domain events emitted by the till.
const (
	TopicSaleFinalized    = "sale.finalized"
	TopicPriceUpdated     = "price.updated"
	TopicCatalogRefreshed = "catalog.refreshed"
)
