package validator

import "testing"

type payload struct {
	Phone string `validate:"required,phone_digits"`
}

func TestPhoneDigits(t *testing.T) {
	val := New()

	cases := []struct {
		phone string
		ok    bool
	}{
		{"5511988887777", true},
		{"+55 (11) 98888-7777", true},
		{"1198888777", true},
		{"119888", false},
		{"not-a-number", false},
		{"", false},
	}
	for _, c := range cases {
		err := val.Struct(payload{Phone: c.phone})
		if c.ok && err != nil {
			t.Fatalf("%q should validate, got %v", c.phone, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("%q should not validate", c.phone)
		}
	}
}
