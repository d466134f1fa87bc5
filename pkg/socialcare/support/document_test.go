package support

import "testing"

func TestValidateCPF(t *testing.T) {
	cases := []struct {
		cpf   string
		valid bool
	}{
		{"529.982.247-25", true},
		{"52998224725", true},
		{"111.444.777-35", true},
		{"111.111.111-11", false},
		{"000.000.000-00", false},
		{"529.982.247-26", false},
		{"529.982.247", false},
		{"", false},
		{"abc.def.ghi-jk", false},
	}

	for _, tc := range cases {
		if got := ValidateCPF(tc.cpf); got != tc.valid {
			t.Errorf("ValidateCPF(%q) = %v, want %v", tc.cpf, got, tc.valid)
		}
	}
}

func TestValidateCNPJ(t *testing.T) {
	cases := []struct {
		cnpj  string
		valid bool
	}{
		{"11.222.333/0001-81", true},
		{"11222333000181", true},
		{"11.222.333/0001-82", false},
		{"11.111.111/1111-11", false},
		{"11.222.333/0001", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := ValidateCNPJ(tc.cnpj); got != tc.valid {
			t.Errorf("ValidateCNPJ(%q) = %v, want %v", tc.cnpj, got, tc.valid)
		}
	}
}

func TestValidateDocument(t *testing.T) {
	if !ValidateDocument(DocumentTypeCPF, "529.982.247-25") {
		t.Error("Expected valid CPF document")
	}
	if !ValidateDocument(DocumentTypeCNPJ, "11.222.333/0001-81") {
		t.Error("Expected valid CNPJ document")
	}
	if ValidateDocument(DocumentTypeCPF, "11.222.333/0001-81") {
		t.Error("A CNPJ must not pass as a CPF")
	}
	if ValidateDocument("passport", "AB123456") {
		t.Error("Unknown document types must not validate")
	}
}

func TestValidatePhone(t *testing.T) {
	cases := []struct {
		phone string
		valid bool
	}{
		{"(42) 3035-4135", true},
		{"(11) 99876-5432", true},
		{"42 3035-4135", false},
		{"(42)3035-4135", false},
		{"(42) 3035 4135", false},
		{"(42) 303-4135", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := ValidatePhone(tc.phone); got != tc.valid {
			t.Errorf("ValidatePhone(%q) = %v, want %v", tc.phone, got, tc.valid)
		}
	}
}
