// Package schema implements the declarative validation layer shared by every
// intake form. A Schema lists plain fields plus discriminated unions: a boolean
// discriminant selects which dependent field set is validated and copied into
// the normalised output. Validate never stops at the first failure; every
// offending field is reported in FieldErrors keyed by its dotted path
// (list items use numeric segments, for example `vacunas.0.nombre_vacuna`).
//
// String fields run their length checks, then their pattern, then the
// normalisation transform (trim plus the field's case rule). Transforms are
// total, so only checks can fail. Normalised output is stable: validating the
// Data of a successful Result again yields identical Data.
package schema
