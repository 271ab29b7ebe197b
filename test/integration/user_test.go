package integration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 说明:用户模块集成测试
// 覆盖注册→登录→刷新→登出的完整认证链路,
// 使用真实的MySQL与Redis(运行方式见helper.go)

func TestUserRegister(t *testing.T) {
	RequireServer(t)

	t.Run("正常注册", func(t *testing.T) {
		email := GenerateTestEmail("normal_user")
		resp := PostJSON(t, BaseURL+"/users/register", map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "测试用户",
		}, "")

		assert.Equal(t, 0, resp.Code, "注册应该成功: %s", resp.Message)

		var data RegisterData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err, "解析响应数据失败")

		assert.NotZero(t, data.ID)
		assert.Equal(t, email, data.Email)
		assert.Equal(t, "CUSTOMER", data.Role, "注册用户默认是普通买家")
		t.Logf("✓ 注册成功, 用户ID: %d", data.ID)
	})

	t.Run("重复邮箱注册失败", func(t *testing.T) {
		email := GenerateTestEmail("dup_user")
		req := map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "重复用户",
		}

		first := PostJSON(t, BaseURL+"/users/register", req, "")
		require.Equal(t, 0, first.Code)

		second := PostJSON(t, BaseURL+"/users/register", req, "")
		assert.NotEqual(t, 0, second.Code, "重复邮箱应该被拒绝")
	})

	t.Run("密码过短", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/users/register", map[string]string{
			"email":    GenerateTestEmail("short_pwd"),
			"password": "123",
			"nickname": "测试用户",
		}, "")
		assert.NotEqual(t, 0, resp.Code)
	})

	t.Run("邮箱格式非法", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/users/register", map[string]string{
			"email":    "not-an-email",
			"password": "Test1234",
			"nickname": "测试用户",
		}, "")
		assert.NotEqual(t, 0, resp.Code)
	})
}

func TestUserLogin(t *testing.T) {
	RequireServer(t)

	email, _ := RegisterTestUser(t, "login_user")

	t.Run("错误密码", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/users/login", map[string]string{
			"email":    email,
			"password": "WrongPassword",
		}, "")
		assert.NotEqual(t, 0, resp.Code, "错误密码不应登录成功")
	})

	t.Run("不存在的用户", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/users/login", map[string]string{
			"email":    "nobody@test.com",
			"password": "Test1234",
		}, "")
		assert.NotEqual(t, 0, resp.Code)
	})
}

func TestTokenLifecycle(t *testing.T) {
	RequireServer(t)

	email, token := RegisterTestUser(t, "token_user")

	t.Run("刷新Token", func(t *testing.T) {
		loginResp := PostJSON(t, BaseURL+"/users/login", map[string]string{
			"email":    email,
			"password": "Test1234",
		}, "")
		require.Equal(t, 0, loginResp.Code)

		var loginData LoginData
		require.NoError(t, json.Unmarshal(loginResp.Data, &loginData))

		refreshResp := PostJSON(t, BaseURL+"/users/refresh", map[string]string{
			"refresh_token": loginData.RefreshToken,
		}, "")
		assert.Equal(t, 0, refreshResp.Code, "刷新应该成功: %s", refreshResp.Message)

		var refreshed LoginData
		require.NoError(t, json.Unmarshal(refreshResp.Data, &refreshed))
		assert.NotEmpty(t, refreshed.AccessToken)
	})

	t.Run("登出后Token失效", func(t *testing.T) {
		logoutResp := PostJSON(t, BaseURL+"/users/logout", nil, token)
		require.Equal(t, 0, logoutResp.Code, "登出失败: %s", logoutResp.Message)

		// 黑名单生效,旧Token不能再访问受保护接口
		resp := GetJSON(t, BaseURL+"/orders/mine", token)
		assert.NotEqual(t, 0, resp.Code, "登出后的Token应该被拒绝")
	})

	t.Run("无Token访问受保护接口", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/orders/mine", "")
		assert.NotEqual(t, 0, resp.Code)
	})
}
