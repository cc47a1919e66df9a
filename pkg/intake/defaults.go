package intake

import (
	"time"

	"github.com/goliatone/go-intake/pkg/schema"
)

// ApplicantDefaults is the blank applicant record a fresh form starts from.
// The birth date stays unset so the applicant has to pick one.
func ApplicantDefaults() schema.Record {
	return schema.Record{
		FieldDocumentType:          "",
		FieldDocumentNumber:        "",
		FieldFirstName:             "",
		FieldMiddleName:            "",
		FieldFirstSurname:          "",
		FieldSecondSurname:         "",
		FieldBirthCountry:          "",
		FieldBirthState:            "",
		FieldBirthCity:             "",
		FieldResidenceNeighborhood: "",
		FieldResidenceAddress:      "",
		FieldResidenceCity:         "",
		FieldResidenceState:        "",
		FieldMailNeighborhood:      "",
		FieldMailAddress:           "",
		FieldMailCity:              "",
		FieldMailState:             "",
		FieldSex:                   "",
		FieldBloodType:             "",
		FieldMaritalStatus:         "",
		FieldDependents:            "1",
		FieldMobile:                "",
		FieldEmail:                 "",
		FieldLandline:              "",
		FieldHasChildren:           false,
	}
}

// SpouseDefaults is the blank spouse record.
func SpouseDefaults() schema.Record {
	return schema.Record{
		FieldDocumentType:          "",
		FieldDocumentNumber:        "",
		FieldFirstName:             "",
		FieldMiddleName:            "",
		FieldFirstSurname:          "",
		FieldSecondSurname:         "",
		FieldBirthCountry:          "",
		FieldBirthState:            "",
		FieldBirthCity:             "",
		FieldResidenceNeighborhood: "",
		FieldResidenceAddress:      "",
		FieldResidenceCity:         "",
		FieldResidenceState:        "",
		FieldMobile:                "",
		FieldEmail:                 "",
		FieldLandline:              "",
		FieldHasJob:                false,
		FieldApplicantDocument:     "",
	}
}

// DemoSpouseDefaults pre-seeds the spouse form with a sample person, as the
// demo deployment does.
func DemoSpouseDefaults() schema.Record {
	record := SpouseDefaults()
	record[FieldDocumentType] = "CC"
	record[FieldDocumentNumber] = "1143994968"
	record[FieldFirstName] = "steven"
	record[FieldFirstSurname] = "alvarado"
	record[FieldSecondSurname] = "paez"
	record[FieldBirthDate] = time.Date(1999, time.February, 7, 0, 0, 0, 0, time.UTC)
	record[FieldBirthCountry] = "colombia"
	record[FieldBirthState] = "valle del cauca"
	record[FieldBirthCity] = "cali"
	record[FieldResidenceNeighborhood] = "villacolombia"
	record[FieldResidenceAddress] = "Calle 33b #12A 15"
	record[FieldResidenceCity] = "cali"
	record[FieldResidenceState] = "valle del cauca"
	record[FieldMobile] = "3192976668"
	record[FieldEmail] = "stevenalvarado@example.com"
	record[FieldLandline] = "123456789"
	return record
}

// VaccinationDefaults is the blank vaccination record.
func VaccinationDefaults() schema.Record {
	return schema.Record{
		FieldApplicantDocument: "",
		FieldHasVaccines:       false,
	}
}
