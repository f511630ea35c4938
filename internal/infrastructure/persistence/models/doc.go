// Package models holds the GORM persistence models that map the export
// management aggregates onto their tables. Domain entities stay free of
// ORM tags; every model carries the column annotations and a pair of
// mappers to and from its domain type, and the repositories only ever
// touch the models.
//
// Layout:
//   - base.go: embedded id, audit and version columns
//   - campaign.go: Campaign and CampaignPrice
//   - sales.go: SalesConfirmation, CustomerOrder, CvAllocation
//   - pricing.go: Formula and FormulaTax
//   - potting.go: TransitOrder, ContractAllocation, Lot, Container
//   - sequence.go: reference sequence counters
package models
