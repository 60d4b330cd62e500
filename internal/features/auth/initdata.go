package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"
)

// ErrInvalidInitData возвращается при любой проблеме с подписью:
// битая строка, отсутствующий hash или несовпадение HMAC.
// Причина наружу не раскрывается.
var ErrInvalidInitData = errors.New("invalid init data")

// webAppDataKey — доменная константа Telegram для вывода ключа подписи.
const webAppDataKey = "WebAppData"

// TelegramUser представляет пользователя из поля user в initData
type TelegramUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Validate проверяет подпись initData от Telegram Mini App и возвращает
// пользователя из полезной нагрузки. Побочных эффектов нет.
func Validate(initData, botToken string) (*TelegramUser, error) {
	parsed, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrInvalidInitData
	}

	receivedHash := parsed.Get("hash")
	if receivedHash == "" {
		return nil, ErrInvalidInitData
	}

	pairs := make([]string, 0, len(parsed))
	for key, values := range parsed {
		if key == "hash" {
			continue
		}
		pairs = append(pairs, key+"="+values[0])
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	computed := computeHash(checkString, botToken)
	if !hmac.Equal([]byte(computed), []byte(receivedHash)) {
		return nil, ErrInvalidInitData
	}

	userRaw := parsed.Get("user")
	if userRaw == "" {
		return nil, ErrInvalidInitData
	}

	var user TelegramUser
	if err := json.Unmarshal([]byte(userRaw), &user); err != nil || user.ID == 0 {
		return nil, ErrInvalidInitData
	}

	return &user, nil
}

// computeHash строит каноническую подпись: ключ выводится как
// HMAC-SHA256(botToken) с ключом "WebAppData", затем им подписывается
// отсортированная строка key=value пар.
func computeHash(checkString, botToken string) string {
	secret := hmac.New(sha256.New, []byte(webAppDataKey))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))

	return hex.EncodeToString(mac.Sum(nil))
}
