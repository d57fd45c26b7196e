package expand

// DefaultPrompt is loaded into the editor when no prompt file is given. It walks
// through the syntax the highlighter and the expander understand.
const DefaultPrompt = `### Large comment
## Medium comment
# Small comment. Everything after '#' on a line is dropped when expanding.

## SETS
# Curly braces pick one choice, '|' separates choices. Choices are equally likely
# unless prefixed with 'N::', where N is a weight between 0 and 1.

    a {red|blue} car,          # red or blue, half each
    a {green|} bird,           # green or nothing
    {0.1::green|0.2::yellow|{pink|red}} background,   # the rest goes to {pink|red}

## WILDCARDS
# A name between double underscores is replaced by a random line of
# <wildcard_dir>/<name>.txt. Sub-directories use '/'. Names are matched
# case-insensitively; unknown ones stay in the prompt and are underlined.
# Hover a wildcard to see its first lines.

    __colors__, __styles/painting__,

## TAGS AND WEIGHTS
# Hover a tag to preview it.
    <lora:someLoraName:0.8>, <lyco:otherName:1:1>,
    (a detail:1.2), ((emphasis)),

## NESTING
{
     0.1:: __subject__
    |0.9:: {0.7::(__subject__:1.3)|}
}
`
