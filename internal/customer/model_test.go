package customer

import "testing"

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		in      Customer
		wantErr bool
	}{
		{"ok", Customer{ID: "CUST001", Name: "John Smith", Email: "john.smith@email.com"}, false},
		{"ok without email", Customer{ID: "CUST002", Name: "Jane Doe"}, false},
		{"missing id", Customer{Name: "John Smith"}, true},
		{"missing name", Customer{ID: "CUST001"}, true},
		{"bad email", Customer{ID: "CUST001", Name: "John Smith", Email: "invalid-email"}, true},
	}
	for _, tc := range cases {
		c := tc.in
		err := c.Validate()
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
	}
}
