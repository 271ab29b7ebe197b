package jwt

import (
	"testing"
	"time"

	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
)

func newTestManager() *Manager {
	return NewManager("test-secret", 2*time.Hour, 168*time.Hour)
}

func TestGenerateAndParseToken(t *testing.T) {
	m := newTestManager()

	pair, err := m.GenerateToken(42, "user@example.com", "CUSTOMER")
	if err != nil {
		t.Fatalf("生成Token失败: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("Token对不应为空")
	}
	if pair.ExpiresIn != 7200 {
		t.Errorf("ExpiresIn应为7200秒,实际%d", pair.ExpiresIn)
	}

	claims, err := m.ParseToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("解析Token失败: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID应为42,实际%d", claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("Email不匹配: %s", claims.Email)
	}
	if claims.Role != "CUSTOMER" {
		t.Errorf("Role不匹配: %s", claims.Role)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	pair, err := newTestManager().GenerateToken(1, "a@b.com", "CUSTOMER")
	if err != nil {
		t.Fatal(err)
	}

	other := NewManager("another-secret", 2*time.Hour, 168*time.Hour)
	if _, err := other.ParseToken(pair.AccessToken); err != apperrors.ErrInvalidToken {
		t.Errorf("错误密钥签名的Token应返回ErrInvalidToken,实际: %v", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, 168*time.Hour)
	pair, err := m.GenerateToken(1, "a@b.com", "CUSTOMER")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.ParseToken(pair.AccessToken); err != apperrors.ErrTokenExpired {
		t.Errorf("过期Token应返回ErrTokenExpired,实际: %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := newTestManager().ParseToken("not.a.token"); err != apperrors.ErrInvalidToken {
		t.Errorf("非法Token应返回ErrInvalidToken,实际: %v", err)
	}
}

func TestRefreshAccessToken(t *testing.T) {
	m := newTestManager()
	pair, err := m.GenerateToken(7, "buyer@example.com", "STAFF")
	if err != nil {
		t.Fatal(err)
	}

	refreshed, err := m.RefreshAccessToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("刷新失败: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Fatal("新Access Token不应为空")
	}
	if refreshed.RefreshToken != pair.RefreshToken {
		t.Error("刷新不应更换Refresh Token")
	}

	// 新Token携带原身份
	claims, err := m.ParseToken(refreshed.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 7 || claims.Role != "STAFF" {
		t.Errorf("刷新后的身份不匹配: userID=%d role=%s", claims.UserID, claims.Role)
	}
}

func TestRefreshAccessToken_InvalidRefreshToken(t *testing.T) {
	if _, err := newTestManager().RefreshAccessToken("garbage"); err == nil {
		t.Error("非法Refresh Token不应刷新成功")
	}
}
