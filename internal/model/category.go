package model

// Category is the closed set of ledger categories an invoice can resolve to.
type Category string

const (
	// CategoryRent covers lease and accommodation charges.
	CategoryRent Category = "rent"
	// CategoryConsultancy covers professional and consulting fees.
	CategoryConsultancy Category = "consultancy"
	// CategorySalary covers wages and payroll.
	CategorySalary Category = "salary"
	// CategoryContract covers contracted supply and maintenance work.
	CategoryContract Category = "contract"
	// CategoryOther is the default bucket for everything unrecognized.
	CategoryOther Category = "other"

	// CategorySuspense marks text where no category keyword matched.
	// It is a scoring outcome, not a postable category.
	CategorySuspense Category = "SUSPENSE"
)

// Categories lists the postable categories in their fixed evaluation order.
func Categories() []Category {
	return []Category{CategoryRent, CategoryConsultancy, CategorySalary, CategoryContract, CategoryOther}
}

// Known reports whether c is one of the postable categories.
func (c Category) Known() bool {
	switch c {
	case CategoryRent, CategoryConsultancy, CategorySalary, CategoryContract, CategoryOther:
		return true
	default:
		return false
	}
}

// ParseCategory maps an arbitrary string onto the closed enumeration,
// defaulting to CategoryOther. It never fails.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryRent, CategoryConsultancy, CategorySalary, CategoryContract, CategoryOther:
		return Category(s)
	default:
		return CategoryOther
	}
}
