package models

import "testing"

func TestSplitBillCode(t *testing.T) {
	cases := []struct {
		in               string
		agency, customer string
	}{
		{"WorldLink:Acme Motors", "WorldLink", "Acme Motors"},
		{"Acme Motors", "", "Acme Motors"},
		{" Agency : Customer:With:Colons ", "Agency", "Customer:With:Colons"},
		{"", "", ""},
	}
	for _, c := range cases {
		agency, customer := SplitBillCode(c.in)
		if agency != c.agency || customer != c.customer {
			t.Errorf("SplitBillCode(%q) = (%q, %q), want (%q, %q)",
				c.in, agency, customer, c.agency, c.customer)
		}
	}
}

func TestIsTrade(t *testing.T) {
	if (&Spot{RevenueType: RevenueTrade}).IsTrade() != true {
		t.Error("trade spot not detected")
	}
	if (&Spot{RevenueType: RevenueLocal}).IsTrade() {
		t.Error("local spot misdetected as trade")
	}
	var nilSpot *Spot
	if nilSpot.IsTrade() {
		t.Error("nil spot misdetected as trade")
	}
}

func TestBatchResultMerge(t *testing.T) {
	a := BatchResult{Processed: 2, Assigned: 1, Errors: 1}
	a.Merge(BatchResult{Processed: 3, MultiBlock: 2, NoCoverage: 1, ReviewFlagged: 1})

	if a.Processed != 5 || a.Assigned != 1 || a.MultiBlock != 2 ||
		a.NoCoverage != 1 || a.ReviewFlagged != 1 || a.Errors != 1 {
		t.Errorf("unexpected merged result %+v", a)
	}
}
