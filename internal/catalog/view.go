package catalog

// View is the mutable query state of one catalog screen: current criteria and
// current page. Any change to filters or search resets the page to 1 so the
// user never lands on a page that no longer exists.
//
// A View is created per screen and discarded on navigation; it is not
// persisted anywhere.
type View struct {
	criteria Criteria
	page     Page
}

func NewView(pageSize int) *View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &View{
		criteria: DefaultCriteria(),
		page:     Page{Number: 1, Size: pageSize},
	}
}

// SetFilter applies a partial criteria update and resets pagination.
func (v *View) SetFilter(patch CriteriaPatch) {
	v.criteria = v.criteria.apply(patch).normalized()
	v.page.Number = 1
}

// SetSearchQuery replaces the search text and resets pagination.
func (v *View) SetSearchQuery(text string) {
	v.criteria.Search = text
	v.page.Number = 1
}

// SetPage moves to the requested 1-based page, clamping below at 1.
func (v *View) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	v.page.Number = n
}

func (v *View) Criteria() Criteria { return v.criteria }

func (v *View) Page() Page { return v.page }

// Results runs the query pipeline for the view's current state.
func (v *View) Results(products []Product) Result {
	return Query(products, v.criteria, v.page)
}
