package analyze

import (
	"fmt"
	"strings"
)

// App - an editing app the pipeline can write steps for
type App struct {
	Key   string
	Role  string // persona line
	Tools string
	Rules string
	Step  string // step line template
}

var apps = map[string]App{
	"snapseed": {
		Key:  "snapseed",
		Role: "You are a senior Snapseed editor inside Glamo AI Photo Assistant.",
		Tools: "- Tune Image: Brightness, Contrast, Saturation, Ambiance, Shadows, Highlights\n" +
			"- Details: Structure, Sharpening\n" +
			"- Curves, White Balance, Selective Adjust, Healing\n" +
			"- Glamour Glow, Drama, Vignette, Brush, Crop",
		Rules: "- Use only integer values (-100 to +100)\n- No vague terms, no ranges, no decimals",
		Step:  "Step 1: [Tool] – [Value]",
	},
	"lightroom": {
		Key:  "lightroom",
		Role: "You are a Lightroom Mobile expert inside Glamo AI Photo Assistant.",
		Tools: "- Light: Exposure, Contrast, Highlights, Shadows, Whites, Blacks\n" +
			"- Color: Temp, Tint, Vibrance, Saturation, HSL (Hue/Saturation/Luminance)\n" +
			"- Effects: Texture, Clarity, Dehaze, Vignette\n" +
			"- Detail: Sharpening\n" +
			"- Crop if necessary",
		Rules: "- Use exact numeric values (-100 to +100 or 0 to 100)\n- No vague or descriptive terms",
		Step:  "Step 1: [Panel/Tool] – [Value]",
	},
	"vsco": {
		Key:  "vsco",
		Role: "You are a VSCO expert inside Glamo AI Photo Assistant.",
		Tools: "- Filters: A6, HB2, M5\n" +
			"- Exposure, Contrast, Temperature, Tint, Skin Tone\n" +
			"- HSL (Hue/Saturation/Lightness)\n" +
			"- Fade, Grain, Highlights Tint, Shadows Tint, Clarity, Crop",
		Rules: "- Use whole numbers only (e.g. A6 – 6)\n- No ranges, no decimals",
		Step:  "Step 1: [Tool or Filter] – [Integer Value]",
	},
	"iphone": {
		Key:  "iphone",
		Role: "You are an iPhone Photos app editor (iOS 17+) inside Glamo AI.",
		Tools: "Auto Enhance, Exposure, Brilliance, Highlights, Shadows, Contrast,\n" +
			"Brightness, Black Point, Saturation, Vibrance, Warmth, Sharpness, Definition, Vignette",
		Rules: "- Integers only (-100 to +100)\n- No vague words, only exact values",
		Step:  "Step 1: [Tool Name] – [Value]",
	},
	"picsart": {
		Key:  "picsart",
		Role: "You are a PicsArt creative editor inside Glamo AI Assistant.",
		Tools: "FX Filters, Retouch, Beautify, Motion Blur, Background Blur, Stickers,\n" +
			"Clone, Lens Flare, Glitch, Dispersion, Crop",
		Rules: "- Use exact integer values (0 to 100) or preset names\n- No ranges or descriptive-only values",
		Step:  "Step 1: [Tool/Effect] – [Value or Preset Name]",
	},
}

var appAliases = map[string]string{
	"iphone photos":     "iphone",
	"iphone photos app": "iphone",
	"lightroom mobile":  "lightroom",
}

// LookupApp - case and whitespace insensitive match against the registered apps
func LookupApp(name string) (App, bool) {
	key := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	if alias, ok := appAliases[key]; ok {
		key = alias
	}
	app, ok := apps[key]
	return app, ok
}

// ComprehensiveAnalysisPrompt - first call; its answer feeds every later prompt
const ComprehensiveAnalysisPrompt = `You are the vision analyst inside Glamo AI Photo Assistant.

Study the uploaded photo and describe it for the editors, caption writers and music
curators who work after you. Return these labelled lines only:

Mood: [emotional tone in a few words]
Scene: [setting, time of day, location type]
Subject: [main subject and what it is doing]
Lighting: [direction, quality, color temperature]
Colors: [dominant palette]
Composition: [framing, depth, notable lines]
Issues: [exposure, noise, tilt or other problems to fix]

No extra text.`

// EditingPrompt - app-specific step list for the requested style
func EditingPrompt(app App, style, analysis string) string {
	return fmt.Sprintf(`%s

🎯 GOAL:
Transform the uploaded image into a professional '%s' look.

📸 IMAGE ANALYSIS:
%s

🛠️ TOOLS YOU CAN USE:
%s

🧼 RULES:
%s

📋 STRICT OUTPUT FORMAT:
%s
Reason: [Short explanation]

Return exactly 12–15 steps in this format.
`, app.Role, style, analysis, app.Tools, app.Rules, app.Step)
}

// CaptionPrompt - five Instagram captions
func CaptionPrompt(style, analysis string) string {
	return fmt.Sprintf(`You are a poetic Instagram caption expert working inside Glamo AI Photo Assistant.

📸 IMAGE ANALYSIS:
%s

🎯 TASK:
Generate 5 unique, stylish Instagram captions that match the emotional tone of the
image and reflect the '%s' aesthetic.

🧠 RULES:
- Each caption ≤ 20 words
- Include '#Glamo' + 2 other unique aesthetic hashtags
- No emojis, no quotes, no numbering
- Do not repeat words across captions
- Do not reference editing or filters

✅ OUTPUT:
[One caption per line, no extra text]
`, analysis, style)
}

// CaptionValidatorPrompt - text-only check of the generated captions
func CaptionValidatorPrompt(style, analysis, captions string) string {
	return fmt.Sprintf(`You are an Instagram caption quality checker for Glamo AI.

📌 PHOTO CONTEXT:
- Style: %s
%s

CAPTIONS TO VALIDATE:
%s

✅ RULE:
Return only one of these:
- ✅ Valid (if all 5 captions fit style, mood, and scene)
- ❌ Invalid (if any caption is off-topic or generic)
`, style, analysis, captions)
}

// MusicPrompt - song titles wrapped in double quotes so they can be extracted
func MusicPrompt(style, analysis string) string {
	return fmt.Sprintf(`You are a cinematic music recommendation expert inside Glamo AI Assistant.

🎯 TASK:
Suggest 10 real, well-known songs (a mix of Hindi and English) that fit the uploaded
photo edited in a '%s' style.

📸 IMAGE ANALYSIS:
%s

RULES:
- Real songs only
- Put every song title in double quotes, e.g. "Song Title"
- Titles only inside the quotes, no artist names or years
- Vary the emotional texture
- Do not describe the image again

📋 OUTPUT FORMAT:
🎵 "Song Title"
🎯 Reason: [Short reason]
`, style, analysis)
}
