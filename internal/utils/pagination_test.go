package utils

import "testing"

func TestValidateAndNormalizePagination(t *testing.T) {
	tests := []struct {
		name         string
		page, size   int
		wantPage     int
		wantPageSize int
	}{
		{"defaults", 0, 0, 1, 20},
		{"negative page", -3, 10, 1, 10},
		{"oversized page size", 2, 500, 2, 100},
		{"passthrough", 3, 50, 3, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size := ValidateAndNormalizePagination(tt.page, tt.size)
			if page != tt.wantPage || size != tt.wantPageSize {
				t.Errorf("got (%d, %d), want (%d, %d)", page, size, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}

func TestCalculateOffset(t *testing.T) {
	if got := CalculateOffset(1, 20); got != 0 {
		t.Errorf("offset = %d", got)
	}
	if got := CalculateOffset(3, 25); got != 50 {
		t.Errorf("offset = %d", got)
	}
}

func TestCalculatePaginationInfo(t *testing.T) {
	info := CalculatePaginationInfo(45, 2, 20)
	if info.TotalPages != 3 {
		t.Errorf("total pages = %d", info.TotalPages)
	}
	if !info.HasNext || !info.HasPrevious {
		t.Errorf("info = %+v", info)
	}

	empty := CalculatePaginationInfo(0, 1, 20)
	if empty.TotalPages != 1 || empty.HasNext || empty.HasPrevious {
		t.Errorf("empty info = %+v", empty)
	}
}

func TestParsePaginationFromQuery(t *testing.T) {
	tests := []struct {
		pageStr, sizeStr string
		wantPage         int
		wantSize         int
	}{
		{"", "", 1, 20},
		{"4", "50", 4, 50},
		{"abc", "xyz", 1, 20},
		{"-1", "500", 1, 20},
	}
	for _, tt := range tests {
		page, size := ParsePaginationFromQuery(tt.pageStr, tt.sizeStr)
		if page != tt.wantPage || size != tt.wantSize {
			t.Errorf("ParsePaginationFromQuery(%q, %q) = (%d, %d), want (%d, %d)",
				tt.pageStr, tt.sizeStr, page, size, tt.wantPage, tt.wantSize)
		}
	}
}
