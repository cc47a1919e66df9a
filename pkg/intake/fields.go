package intake

// API field names shared by the applicant, spouse and vaccination records.
const (
	FieldDocumentType   = "tipo_documento"
	FieldDocumentNumber = "numero_documento"
	FieldFirstName      = "primer_nombre"
	FieldMiddleName     = "segundo_nombre"
	FieldFirstSurname   = "primer_apellido"
	FieldSecondSurname  = "segundo_apellido"
	FieldBirthDate      = "fecha_nacimiento"
	FieldBirthCountry   = "pais_nacimiento"
	FieldBirthState     = "departamento_nacimiento"
	FieldBirthCity      = "ciudad_nacimiento"

	FieldResidenceNeighborhood = "barrio_residencia"
	FieldResidenceAddress      = "direccion_residencia"
	FieldResidenceCity         = "ciudad_residencia"
	FieldResidenceState        = "departamento_residencia"

	FieldMailNeighborhood = "barrio_correspondencia"
	FieldMailAddress      = "direccion_correspondencia"
	FieldMailCity         = "ciudad_correspondencia"
	FieldMailState        = "departamento_correspondencia"

	FieldSex           = "sexo"
	FieldBloodType     = "tipo_sangre"
	FieldMaritalStatus = "estado_civil"
	FieldDependents    = "personas_a_cargo"
	FieldMobile        = "celular"
	FieldEmail         = "correo"
	FieldLandline      = "telefono"

	FieldHasChildren = "tiene_hijos"
	FieldChildren    = "numero_hijos"

	FieldApplicantDocument = "numero_documento_postulante"

	FieldHasJob          = "tiene_trabajo"
	FieldEmployerName    = "nombre_empresa"
	FieldEmployerAddress = "direccion_empresa"
	FieldEmployerType    = "tipo_de_empresa"
	FieldEmployerPhone   = "telefono_empresa"
	FieldEmployerCity    = "ciudad_empresa"
	FieldJobTitle        = "cargo_conyuge_empresa"

	FieldHasVaccines = "tiene_vacunas"
	FieldVaccines    = "vacunas"
	FieldVaccineName = "nombre_vacuna"
	FieldDosesGiven  = "dosis_suministradas"
	FieldDoseDate    = "fechas_dosis"
)
