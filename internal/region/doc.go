// Package region classifies player countries into the coarse regions used for reporting.
//
// Classification is a case-insensitive lookup against two configured country sets (NA and EU).
// Anything that does not match, including an empty string, resolves to Other, so the
// classifier never fails.
package region
