package utils

import (
	"math/rand"
	"time"

	"github.com/ovationhq/arts_academy/models"
	"gorm.io/gorm"
)

const meetingCodeLength = 8
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateUniqueMeetingCode returns a code not yet used by any class
// meeting link.
func GenerateUniqueMeetingCode(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, meetingCodeLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		code := string(b)

		var session models.ClassSession
		err := tx.Where("meeting_link LIKE ?", "%"+code).First(&session).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return code, nil
			}
			return "", err
		}
	}
}
