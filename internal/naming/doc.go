// Package naming extracts show, season and episode identity from raw file and
// directory names, and formats the canonical destination names used in the
// library.
//
// Inputs are folded to half-width before matching so full-width digits and
// brackets common in CJK release names parse like their ASCII forms.
package naming
