package controller

import (
	"strconv"
	"time"
)

func (c controller) generateTimeBasedId() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36) + c.generator.GenerateRandomString(4)
}

func (c controller) guestName() string {
	return "Guest-" + c.generator.GenerateRandomString(4)
}
