package schema

import "fmt"

func (f Field) subject() string {
	if f.Label != "" {
		return f.Label
	}
	return fmt.Sprintf("El campo %s", f.Name)
}

func pick(custom, fallback string) string {
	if custom != "" {
		return custom
	}
	return fallback
}

func characters(n int) string {
	if n == 1 {
		return "carácter"
	}
	return "caracteres"
}

func (f Field) requiredMessage() string {
	return pick(f.Messages.Required, fmt.Sprintf("%s es obligatorio.", f.subject()))
}

func (f Field) typeMessage() string {
	return pick(f.Messages.Type, pick(f.Messages.Required, fmt.Sprintf("%s tiene un formato inválido.", f.subject())))
}

func (f Field) minLengthMessage() string {
	return pick(f.Messages.MinLength, fmt.Sprintf("%s debe tener al menos %d %s.", f.subject(), f.MinLength, characters(f.MinLength)))
}

func (f Field) maxLengthMessage() string {
	return pick(f.Messages.MaxLength, fmt.Sprintf("%s no debe superar %d %s.", f.subject(), f.MaxLength, characters(f.MaxLength)))
}

func (f Field) patternMessage() string {
	return pick(f.Messages.Pattern, fmt.Sprintf("%s tiene un formato inválido.", f.subject()))
}

func (f Field) optionMessage() string {
	return pick(f.Messages.Option, "Seleccione una opción válida.")
}

func (f Field) emailMessage() string {
	return pick(f.Messages.Email, "Correo electrónico inválido.")
}

func (f Field) minMessage() string {
	if f.Min == nil {
		return f.typeMessage()
	}
	return pick(f.Messages.Min, fmt.Sprintf("%s debe ser mayor o igual a %v.", f.subject(), *f.Min))
}

func (f Field) maxDateMessage() string {
	return pick(f.Messages.MaxDate, fmt.Sprintf("%s está fuera del rango permitido.", f.subject()))
}

func (f Field) minItemsMessage() string {
	return pick(f.Messages.MinItems, fmt.Sprintf("%s debe tener al menos %d elemento(s).", f.subject(), f.MinItems))
}
