package valueobject

// ProductType identifies a cocoa semi-finished product
type ProductType string

const (
	ProductCocoaMass   ProductType = "cocoa_mass"
	ProductCocoaButter ProductType = "cocoa_butter"
	ProductCocoaCake   ProductType = "cocoa_cake"
	ProductCocoaPowder ProductType = "cocoa_powder"
	// ProductAll marks a sales confirmation valid for every product type
	ProductAll ProductType = "all"
)

// IsValid checks if the value is a known product type
func (p ProductType) IsValid() bool {
	switch p {
	case ProductCocoaMass, ProductCocoaButter, ProductCocoaCake, ProductCocoaPowder, ProductAll:
		return true
	}
	return false
}

// IsConcrete returns true for an actual product (everything except "all")
func (p ProductType) IsConcrete() bool {
	return p.IsValid() && p != ProductAll
}

// String returns the string representation
func (p ProductType) String() string {
	return string(p)
}

// Accepts reports whether a document carrying this product type can be used
// for the given concrete product. A confirmation issued for "all" accepts any
// product.
func (p ProductType) Accepts(other ProductType) bool {
	if p == ProductAll {
		return true
	}
	return p == other
}

// Label returns the French display label used on council documents
func (p ProductType) Label() string {
	switch p {
	case ProductCocoaMass:
		return "Masse de cacao"
	case ProductCocoaButter:
		return "Beurre de cacao"
	case ProductCocoaCake:
		return "Cake (Tourteau) de cacao"
	case ProductCocoaPowder:
		return "Poudre de cacao"
	case ProductAll:
		return "Tous produits"
	}
	return string(p)
}

// ConcreteProductTypes returns every concrete product type
func ConcreteProductTypes() []ProductType {
	return []ProductType{ProductCocoaMass, ProductCocoaButter, ProductCocoaCake, ProductCocoaPowder}
}
