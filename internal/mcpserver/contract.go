package mcpserver

// EntryFormatContract describes how diary entries are stored on disk, for
// LLM consumers that create entries or read the vault directly.
const EntryFormatContract = `# Diary Entry Format Contract

Each diary entry is one file in the vault. Entries are created through the
create_entry tool; the server assigns the id and the file path.

## Location

` + "`" + `entries/YYYY/MM/<uuid>.md` + "`" + `, where YYYY/MM is the entry's month in the
diary's configured timezone. Changing an entry's date to another month moves
the file.

## Structure

` + "```" + `markdown
---
id: 6f1c2b9e-4d5a-4c3b-9a8e-1f2d3c4b5a69   # REQUIRED - entry UUID
date: 2024-03-05T21:15:00-05:00             # REQUIRED - RFC 3339 timestamp
title: Rainy evening                         # OPTIONAL - falls back to the first "# " heading
tags:                                        # OPTIONAL - merged with inline #tags
  - weather
---
Walked home in the rain. #walks
` + "```" + `

## Rules

1. **Frontmatter is mandatory.** The ` + "`" + `---` + "`" + ` fences must be the first thing in the file.
2. **The body is stored exactly as written** after the closing fence, with no
   added trailing newline.
3. **Binary bodies** (rich text archives and other non-UTF-8 content) are
   stored base64-encoded with ` + "`" + `encoding: base64` + "`" + ` in the frontmatter.
4. **Tags** come from the frontmatter list and from ` + "`" + `#tag` + "`" + ` words in a text body.
5. **Dates** decide which calendar day shows the entry. Several entries may
   share a day; they are listed oldest first.
6. **Search** matches titles, bodies, tags and the long date form
   (e.g. "March 5, 2024").
`
