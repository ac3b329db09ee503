package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
)

func AddToLogMessage(logMessagesBuilder *strings.Builder, strToAdd string) {

	if logMessagesBuilder.Len() == logMessagesBuilder.Cap() {

		logMessagesBuilder.Grow(len(strToAdd))
	}

	logMessagesBuilder.WriteString(strToAdd)
	logMessagesBuilder.WriteString(";")
	logMessagesBuilder.WriteString("\n")
}

func randomDigits(n int) string {
	code := ""
	for i := 0; i < n; i++ {
		b := make([]byte, 1)
		rand.Read(b)
		code += fmt.Sprintf("%d", int(b[0])%10)
	}
	return code
}
