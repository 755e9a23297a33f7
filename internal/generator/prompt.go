package generator

import "fmt"

// promptTemplate は軸・象限設定を生成させるための指示文。%q にユーザーの要求が入る。
const promptTemplate = `
あなたはスキルマップ作成の専門家です。以下のユーザーの要求に基づいて、スキルマップの軸設定と象限ラベルを生成してください。

ユーザーの要求: %q

以下のJSON形式で回答してください：

{
  "verticalAxis": {
    "positive": "縦軸の正の方向のラベル（例：技術的専門性が高い）",
    "negative": "縦軸の負の方向のラベル（例：技術的専門性が低い）"
  },
  "horizontalAxis": {
    "positive": "横軸の正の方向のラベル（例：ビジネス貢献度が高い）",
    "negative": "横軸の負の方向のラベル（例：ビジネス貢献度が低い）"
  },
  "quadrants": {
    "topRight": ["第1象限のスキル1", "第1象限のスキル2", "第1象限のスキル3", "第1象限のスキル4"],
    "topLeft": ["第2象限のスキル1", "第2象限のスキル2", "第2象限のスキル3", "第2象限のスキル4"],
    "bottomLeft": ["第3象限のスキル1", "第3象限のスキル2", "第3象限のスキル3", "第3象限のスキル4"],
    "bottomRight": ["第4象限のスキル1", "第4象限のスキル2", "第4象限のスキル3", "第4象限のスキル4"]
  }
}

注意事項：
- 各象限には4つの関連するスキルを含めてください
- 各象限の配列は外側の角、外側の行の内側、中心側の角、内側の行の外側の順に並べてください
- スキル名は具体的で実用的なものにしてください
- 軸のラベルはユーザーの要求に合致するようにしてください
- JSON形式以外の文字は含めないでください
`

// BuildPrompt はユーザーの要求を埋め込んだ生成用プロンプトを返す。
func BuildPrompt(userPrompt string) string {
	return fmt.Sprintf(promptTemplate, userPrompt)
}
