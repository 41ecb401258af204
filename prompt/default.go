package prompt

import (
	"fmt"
	"strings"

	"msgagent/models"
)

// DefaultTemplate is used for users without an active custom template.
const DefaultTemplate = `
# Role
你是 {{user_name}}，{{user_profile}}。你的主要任務是協助處理通訊訊息。

# Goal
對收到的訊息進行以下處理：
1. 分類到四大類別：工作、朋友、家人、廣告
2. 根據發送者設定優先級 (1-5)
3. 判斷是否需要封存
4. 必要時生成符合個人風格的回覆草稿

# Tools
你有以下工具可用：
- classify_message: 判斷訊息類別
- extract_tags: 產生標籤
- score_priority: 設定優先級
- decide_archive: 決定是否封存
- draft_reply: 生成回覆草稿

# Constraint
- 輸出格式必須為有效 JSON
- 語言：{{language}}
- 語調風格：{{tone_style}}
- 回覆字數：{{reply_length}}
- 個人簽名：{{signature}}

# Example
輸入："今晚一起去看電影《沙丘2》好嗎？"
輸出：
{
  "category": "朋友",
  "priority": 2,
  "should_archive": false,
  "draft": "可以啊，幾點開場？{{signature}}"
}
`

// Sections a template is expected to contain. Missing ones only warn.
var Sections = []string{"Role", "Goal", "Tools", "Constraint"}

// MissingSections lists the conventional sections absent from content.
func MissingSections(content string) []string {
	upper := strings.ToUpper(content)
	var missing []string
	for _, s := range Sections {
		if !strings.Contains(upper, strings.ToUpper(s)) {
			missing = append(missing, s)
		}
	}
	return missing
}

// FallbackPrompt builds a prompt straight from the profile, without the
// template engine.
func FallbackPrompt(tone models.ToneProfile) string {
	style := tone.Style
	if style == "" {
		style = models.StyleFormal
	}
	return fmt.Sprintf("\n你是 %s。\n請對訊息進行分類（工作/朋友/家人/廣告）、設定優先級（1-5）、\n決定是否封存，並在需要時生成回覆草稿。\n輸出格式為 JSON。語調：%s。\n",
		tone.Name, style)
}

// ProfileVars maps a tone profile onto the template variables.
func ProfileVars(tone models.ToneProfile) map[string]string {
	return map[string]string{
		VarUserName:    tone.Name,
		VarUserProfile: tone.Profile,
		VarToneStyle:   string(tone.Style),
		VarReplyLength: string(tone.ReplyLength),
		VarSignature:   tone.Signature,
		VarLanguage:    tone.Language,
	}
}
