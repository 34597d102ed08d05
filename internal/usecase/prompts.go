package usecase

import (
	"fmt"
	"strings"
)

const evaluationSchema = `Return STRICT JSON only (no extra text, no code fences, no commentary) with keys:
- "candidate_name": string, from the resume if possible; otherwise a clean version of the filename.
- "score": integer 0-100 following the rubric above.
- "one_line_reason": one short sentence: why this score vs this role.
- "seniority": short phrase, e.g. "Senior backend engineer (7y)".
- "recency": short phrase about recency of relevant work.
- "top_attributes": short list of key skills/technologies (array of strings).
- "key_highlights": 1-3 short phrases about standout experience (array of strings).
- "key_gaps": list of important missing things vs the role (array of strings).
- "match_summary": one short sentence summarizing overall fit.`

func requirementsPrompt(role string) string {
	return fmt.Sprintf(`You are an expert technical recruiter.

Task:
Read the job description below and extract a structured requirement profile.
Every candidate will be judged against this exact profile, so be precise and
ignore non-technical boilerplate (benefits, company description, perks).

Return STRICT JSON only (no extra text, no code fences, no commentary) with keys:
- "core_competencies": ordered array of strings, most important first.
- "must_haves": array of strings, requirements the role cannot work without.
- "nice_to_haves": array of strings.
- "archetype": short label for the role, e.g. "Senior data platform engineer".

Job Description:
"""%s"""`, role)
}

func gatePrompt(rule, filename string) string {
	return fmt.Sprintf(`You are screening ONE candidate resume against a single eligibility rule.

Rule:
%s

Task:
Decide, from the attached resume text only, whether the candidate satisfies
the rule. Do not evaluate skills or fit; this is a binary eligibility check.

Return STRICT JSON only (no extra text, no code fences, no commentary) with keys:
- "admit": boolean, true if the candidate satisfies the rule.
- "reason": one short sentence explaining the decision.

The candidate's resume text is attached. Its filename is: %s`, rule, filename)
}

func scorePrompt(role string, profile profileText, filename, guidance string) string {
	var b strings.Builder
	b.WriteString(`You are an expert tech recruiter.

Task:
Given a job description and ONE candidate's resume (attached as plain text), evaluate how well this candidate fits the role purely from a technical perspective.

Focus rules:
- Focus ONLY on technical skills, work experience, and concrete project experience.
- Ignore non-technical parts of the JD (benefits, company description, perks, HR boilerplate, etc.).
- Use your knowledge to detect implicit/related skills (e.g., strong Postgres/MySQL -> SQL; PySpark/Spark -> data engineering).
- Do NOT guess skills that are not clearly implied by the resume.
- You already have access to the full resume text. NEVER say you cannot read it. NEVER ask for the resume to be resent.

Scoring rubric (0-100):
- 0-20: Almost no overlap with the role's tech stack.
- 21-40: Some overlap but many core requirements missing.
- 41-60: Partial match; several important must-haves missing or shallow.
- 61-80: Solid match; most core requirements present with reasonable depth.
- 81-90: Strong match; nearly all core requirements present with good depth and relevant projects.
- 91-100: Exceptional match; deep experience with almost all core requirements. Reserve scores above 95 for truly outstanding fits.

Must-have handling:
- If at least ONE clearly required core skill is missing -> cap score at 60.
- If SEVERAL clearly required core skills are missing -> cap score at 40.
- If NONE of the core tech stack appears in the resume -> cap score at 20.
`)
	if guidance != "" {
		b.WriteString("\nAdditional guidance:\n")
		b.WriteString(guidance)
		b.WriteString("\n")
	}
	if s := profile.String(); s != "" {
		b.WriteString("\nExtracted requirement profile (judge every candidate against this same rubric):\n")
		b.WriteString(s)
		b.WriteString("\n")
	}
	b.WriteString("\nOutput JSON schema:\n")
	b.WriteString(evaluationSchema)
	b.WriteString("\nEven if the resume is very short or partially unreadable, you MUST still return valid JSON using this schema and set an appropriate low score with clear gaps.\n")
	fmt.Fprintf(&b, "\nJob Description:\n\"\"\"%s\"\"\"\n", role)
	fmt.Fprintf(&b, "\nThe candidate's resume is attached as plain text. Its filename is: %s", filename)
	return b.String()
}

func repairPrompt(raw string) string {
	return fmt.Sprintf(`The following was your previous response when asked to evaluate a resume, but it was not valid JSON:

`+"```text\n%s\n```"+`

Rewrite this information as STRICT JSON ONLY, matching the following schema. Do not add any extra commentary, code fences, or explanations.

Schema:
%s`, raw, evaluationSchema)
}

func rerankPrompt(role, summaries, guidance string) string {
	var b strings.Builder
	b.WriteString(`You are an expert technical recruiter.

Task:
Given a job description and a list of candidate summaries, produce a FINAL ranking of candidates for this single role.

Each candidate summary line has: an id, candidate name, the initial technical score (0-100) from a previous evaluation, a short reason for that score, seniority and recency hints, key attributes, key highlights, and key gaps vs the job description.

Instructions:
- Treat candidates as COMPETING for ONE open role.
- Compare candidates AGAINST EACH OTHER, not in isolation.
- Use the initial score as a signal, but you may adjust it for relative comparison.
- Cover EVERY id exactly once, sorted from BEST to WORST fit, with final_score non-increasing down the list.
- You ONLY see these summaries, not the original resumes. NEVER ask for resumes or additional text. If a summary contains almost no information, still return an entry with final_score=0 and a clear rerank_reason.
`)
	if guidance != "" {
		b.WriteString("\nAdditional guidance:\n")
		b.WriteString(guidance)
		b.WriteString("\n")
	}
	b.WriteString(`
Output JSON schema:
Return STRICT JSON only (no extra text, no code fences, no commentary) with a single key:
- "candidates": array of objects, sorted from BEST to WORST fit, each object with:
  - "id": candidate id from the summaries.
  - "candidate_name": candidate name.
  - "final_score": integer 0-100 (your adjusted score for relative ranking).
  - "rank": integer rank (1 = best).
  - "rerank_reason": one or two very short phrases explaining this candidate's placement relative to others.
`)
	fmt.Fprintf(&b, "\nJob Description:\n\"\"\"%s\"\"\"\n", role)
	fmt.Fprintf(&b, "\nCandidate summaries:\n%s", summaries)
	return b.String()
}

// profileText renders a RequirementProfile for prompt injection.
type profileText struct {
	Core       []string
	MustHave   []string
	NiceToHave []string
	Archetype  string
}

func (p profileText) String() string {
	if len(p.Core) == 0 && len(p.MustHave) == 0 && len(p.NiceToHave) == 0 && p.Archetype == "" {
		return ""
	}
	var b strings.Builder
	if p.Archetype != "" {
		fmt.Fprintf(&b, "Role archetype: %s\n", p.Archetype)
	}
	if len(p.Core) > 0 {
		fmt.Fprintf(&b, "Core competencies (most important first): %s\n", strings.Join(p.Core, "; "))
	}
	if len(p.MustHave) > 0 {
		fmt.Fprintf(&b, "Must-haves: %s\n", strings.Join(p.MustHave, "; "))
	}
	if len(p.NiceToHave) > 0 {
		fmt.Fprintf(&b, "Nice-to-haves: %s\n", strings.Join(p.NiceToHave, "; "))
	}
	return strings.TrimRight(b.String(), "\n")
}
