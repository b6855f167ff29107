/*
Package matcher pairs source fields from a clipboard snapshot with target
fields scanned from the page being filled.

Two strategies implement Strategy:

  - Heuristic scores every source against every target with a token Dice
    coefficient that gives partial credit to synonyms, and falls back to a
    looser keyword overlap on the raw labels. It needs nothing external
    and is deterministic.
  - Delegated asks a semantic mapping service (see package delegate) and
    falls back to Heuristic when the service is missing, failing or
    silent about some targets.

Every target receives at most one mapping. A source may feed any number
of targets.
*/
package matcher
