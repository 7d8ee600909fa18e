package llm

import (
	"fmt"
)

// promptTemplate asks for one JSON object; placeholders are blog name,
// language and keyword.
const promptTemplate = `You are a columnist for the blog "%[1]s".
Your job is to write a blog post about a real-time trending keyword that many people are searching for right now.

Rules:
1. Length: at least 1500 characters. Shorter posts are treated as failures.
2. Tone: blog style, but analysis and insight rather than a plain news summary.
3. Style: friendly and natural, easy to follow without being too casual.
4. Structure:
   - Title: an engaging, click-worthy sentence.
   - At least three sentence-style subheadings ("## ..."), each with three to five paragraphs covering
     the background of the trend, concrete facts or reactions, an expert view or imagined insight,
     and your own interpretation and outlook.
   - Closing: end with a question to the reader.
5. Do not include images, image markdown or image URLs in the content.
6. Write the title, content and hashtags in %[2]s. Write imageQuery in English.

Respond with JSON only, in exactly this shape:

{
  "title": "post title",
  "content": "## Subheading 1\n\nBody...\n\n## Subheading 2\n\nBody...\n\n## Subheading 3\n\nBody...\n\n## Closing\n\nBody...",
  "hashtags": ["tag1", "tag2", "tag3", "tag4", "tag5"],
  "imageQuery": "english keywords for an image search"
}

Keyword: %[3]s
`

// BuildPrompt renders the generation prompt for a keyword
func BuildPrompt(blogName, language, keyword string) string {
	return fmt.Sprintf(promptTemplate, blogName, language, keyword)
}
