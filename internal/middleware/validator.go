package middleware

import (
	"fmt"

	"github.com/campusloop/campusloop-backend/internal/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding tags:
//
//	chatid - non-empty identifier usable in a conversation key
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("chatid", validateChatID)
}

func validateChatID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	_, err := domain.NewConversationKey(id, id)
	return err == nil
}
