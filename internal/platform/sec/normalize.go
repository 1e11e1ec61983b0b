// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeIdentifier canonicalizes an email or username for lookups.
//
// The value is NFKC-normalized, trimmed and case-folded so that visually
// identical identifiers map to one account.
func NormalizeIdentifier(raw string) string {
	normalized := norm.NFKC.String(strings.TrimSpace(raw))
	return cases.Fold().String(normalized)
}
