// Package validation wraps go-playground/validator with JSON field names and
// localized (Arabic) messages for the first failing field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
)

var fieldMessages = map[string]string{
	"email.required":         "البريد الإلكتروني مطلوب",
	"email.email":            "البريد الإلكتروني غير صالح",
	"email.taken":            "البريد الإلكتروني مسجل مسبقًا",
	"password.required":      "كلمة المرور مطلوبة",
	"password.min":           "كلمة المرور يجب أن تكون 8 أحرف على الأقل",
	"full_name.required":     "الاسم الكامل مطلوب",
	"full_name.min":          "الاسم يجب أن يكون 3 أحرف على الأقل",
	"title.required":         "العنوان مطلوب",
	"title.min":              "العنوان يجب أن يكون 5 أحرف على الأقل",
	"description.required":   "الوصف مطلوب",
	"description.min":        "الوصف يجب أن يكون 20 حرف على الأقل",
	"category_id.required":   "الفئة مطلوبة",
	"category_id.uuid":       "معرف الفئة غير صالح",
	"priority.oneof":         "الأولوية غير صالحة",
	"status.oneof":           "الحالة غير صالحة",
	"role.oneof":             "الدور غير صالح",
	"rating.min":             "التقييم يجب أن يكون بين 1 و 5",
	"rating.max":             "التقييم يجب أن يكون بين 1 و 5",
	"avatar_url.url":         "رابط الصورة غير صالح",
	"name.required":          "اسم الفئة مطلوب",
	"name.min":               "اسم الفئة يجب أن يكون 3 أحرف على الأقل",
	"request_id.required":    "معرف الطلب مطلوب",
	"request_id.uuid":        "معرف الطلب غير صالح",
	"assigned_to.required":   "المكلف مطلوب",
	"assigned_to.uuid":       "معرف المكلف غير صالح",
	"refresh_token.required": "رمز التحديث مطلوب",
	"lat.latitude":           "خط العرض غير صالح",
	"lng.longitude":          "خط الطول غير صالح",
}

var tagMessages = map[string]string{
	"required":  "الحقل %s مطلوب",
	"min":       "الحقل %s أقصر من الحد المسموح",
	"max":       "الحقل %s أطول من الحد المسموح",
	"email":     "الحقل %s يجب أن يكون بريدًا إلكترونيًا صالحًا",
	"uuid":      "الحقل %s يجب أن يكون معرفًا صالحًا",
	"oneof":     "قيمة الحقل %s غير مسموح بها",
	"url":       "الحقل %s يجب أن يكون رابطًا صالحًا",
	"latitude":  "الحقل %s يجب أن يكون خط عرض صالحًا",
	"longitude": "الحقل %s يجب أن يكون خط طول صالحًا",
}

// New returns a validator that reports JSON field names.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates s and converts the first failure into an input error.
func Struct(v *validator.Validate, s interface{}) error {
	if err := v.Struct(s); err != nil {
		return Translate(err)
	}
	return nil
}

// Translate converts validator output into an *errors.Error that names the
// failing field. Errors of other types are wrapped as generic input errors.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "بيانات غير صالحة")
	}
	fe := fieldErrs[0]
	field := fe.Field()
	return appErrors.Validation(field, Message(field, fe.Tag()))
}

// Message returns the localized message for a field and rule.
func Message(field, tag string) string {
	if msg, ok := fieldMessages[field+"."+tag]; ok {
		return msg
	}
	if format, ok := tagMessages[tag]; ok {
		return fmt.Sprintf(format, field)
	}
	return fmt.Sprintf("الحقل %s غير صالح", field)
}
