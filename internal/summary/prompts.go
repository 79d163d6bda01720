package summary

import (
	"fmt"
	"strings"

	"prodassist/internal/types"
)

// overviewInstruction asks the code analyzer for a product-level pass over
// the repository, feeding the summarizer.
const overviewInstruction = `You are a product strategist helping a product manager understand a software project. Analyze the codebase and provide a high-level overview from a product/business perspective.

Rules:
- Write for a product manager, NOT for engineers
- Focus on what the project does from a user/product perspective, not how it's built
- Use plain language - avoid technical jargon
- Focus on business value, user experience, and product capabilities

Provide:
1. What this project does (main purpose and functionality from a user/business perspective)
2. Key product capabilities and features (what users can do with this)
3. Business value and use cases (what problems it solves, who it serves)
4. Main product areas or domains (high-level functional areas, not technical components)

Keep it concise and focused on understanding the project's product purpose and business value.`

const summarySystemPrompt = `You are a product strategy advisor helping product managers understand software projects.
Write in business-friendly language. Focus on product impact, user experience, and business considerations.
Avoid technical jargon, code references, or file names. Be thorough, realistic, and professional.`

func summaryPrompt(projectName, analysis, keyFiles string, structure *types.RepoStructure) string {
	if projectName == "" {
		projectName = "Not specified"
	}

	analysisSnippet := analysis
	if len(analysisSnippet) > maxAnalysisChars {
		analysisSnippet = analysisSnippet[:maxAnalysisChars]
	}
	if analysisSnippet == "" {
		analysisSnippet = "No codebase analysis available."
	}

	filesSnippet := keyFiles
	if len(filesSnippet) > maxKeyFilesChars {
		filesSnippet = filesSnippet[:maxKeyFilesChars]
	}
	if filesSnippet == "" {
		filesSnippet = "No key files found."
	}

	dirs := structure.Directories
	if len(dirs) > maxOverviewDirs {
		dirs = dirs[:maxOverviewDirs]
	}
	overview := fmt.Sprintf(`Codebase Overview:
- Total files: %d
- Total directories: %d
- Key directories: %s`, len(structure.Files), len(structure.Directories), strings.Join(dirs, ", "))

	return fmt.Sprintf(`You are a product strategy advisor helping a product manager understand a software project.

Rules:
- Write for a product manager, NOT for engineers
- Do NOT mention specific files, code, or technical implementation details
- Focus on business impact, user experience, and product considerations
- Use plain language - avoid technical jargon
- Explain what the project does from a user/product perspective, not how it's built
- For tech stack, focus on technologies that matter from a product/business perspective (platforms, frameworks that affect capabilities)

Task:
Analyze the codebase and provide:

1. **Project Summary**: A concise 2-3 sentence overview of what this project does from a product/business perspective - what value it provides, what users can do with it, and its role in the product ecosystem.

2. **Project Purpose**: A clear statement of the project's purpose from a business perspective - why it exists, what problem it solves, who it serves, and what business outcomes it enables.

3. **Tech Stack**: A list of technologies, platforms, and tools that are relevant from a product/business perspective. Focus on technologies that affect product capabilities, user experience, or business operations. Format as a simple list of technology names.

Project Name: %s

Codebase Analysis:
%s

Key Files Information:
%s

Codebase Structure:
%s

Output format (use this structure exactly):

## Project Summary
[2-3 sentence overview of what the project does from a product/business perspective]

## Project Purpose
[Clear statement of why the project exists, what problem it solves, and who it serves - from a business/product perspective]

## Tech Stack
[List technologies that matter from a product/business perspective, one per line:
- Technology 1
- Technology 2
- Technology 3
...]`, projectName, analysisSnippet, filesSnippet, overview)
}
