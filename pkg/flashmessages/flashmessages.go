// Package flashmessages stores one-shot messages in the session across a redirect.
package flashmessages

import (
	"encoding/json"

	"nika.id/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	FlashSuccessKey = "flash_success"
	FlashErrorKey   = "flash_error"
	flashFormKey    = "flash_form"
)

type FlashMessages struct {
	Success string
	Error   string
}

func SetFlashMessage(c *fiber.Ctx, key, message string) error {
	sess, err := utils.SessionStart(c)
	if err != nil {
		return err
	}
	sess.Set(key, message)
	return sess.Save()
}

// GetFlashMessages reads and clears both message slots.
func GetFlashMessages(c *fiber.Ctx) (FlashMessages, error) {
	var out FlashMessages
	sess, err := utils.SessionStart(c)
	if err != nil {
		return out, err
	}
	if v, ok := sess.Get(FlashSuccessKey).(string); ok {
		out.Success = v
		sess.Delete(FlashSuccessKey)
	}
	if v, ok := sess.Get(FlashErrorKey).(string); ok {
		out.Error = v
		sess.Delete(FlashErrorKey)
	}
	return out, sess.Save()
}

// SetFlashFormData keeps submitted form values so the form can be refilled after a failed POST.
func SetFlashFormData(c *fiber.Ctx, data any) error {
	sess, err := utils.SessionStart(c)
	if err != nil {
		return err
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	sess.Set(flashFormKey, string(b))
	return sess.Save()
}

func GetFlashFormData(c *fiber.Ctx) map[string]any {
	sess, err := utils.SessionStart(c)
	if err != nil {
		return nil
	}
	raw, ok := sess.Get(flashFormKey).(string)
	if !ok {
		return nil
	}
	sess.Delete(flashFormKey)
	_ = sess.Save()
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
