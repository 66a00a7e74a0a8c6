package help

// ColdstartYAML is printed by the quickstart command.
const ColdstartYAML = `# linkmeta Quick Start

commands:
  classify: |
    linkmeta classify https://x.com/golang/status/1

  extract: |
    linkmeta extract https://github.com/golang/go

  batch: |
    linkmeta extract --workers 8 --urls "https://youtu.be/dQw4w9WgXcQ,https://arxiv.org/abs/1706.03762"

  cached: |
    linkmeta --cache-backend sqlite extract --cache https://en.wikipedia.org/wiki/Go_(programming_language)

  legacy_records: |
    linkmeta extract --legacy --fields "url,title,content_type" https://www.reddit.com/r/golang/

  cache_maintenance: |
    linkmeta cache stats
    linkmeta cache clean
    linkmeta cache clear https://github.com/golang/go

  server: |
    linkmeta serve --addr :8080
    curl -s localhost:8080/api/v1/classify?url=https://youtu.be/dQw4w9WgXcQ
    curl -s -XPOST localhost:8080/api/v1/extract -d '{"url":"https://github.com/golang/go","cache":true}'

content_types:
  social: [twitter, reddit, tiktok, instagram, youtube]
  long_form: [article, wikipedia, arxiv, amazon, product, pdf]
  developer: [github, stackoverflow]
  media: [image, video, audio]
  other: [note, bookmark, unknown]

cache:
  backends: [memory, file, sqlite, redis]
  max_age:
    social: 6h
    long_form: 48h
    default: 24h

exit_codes:
  0: "every URL extracted"
  1: "some URLs failed"
  2: "every URL failed or bad input"

config: |
  # linkmeta.yaml
  fetch:
    timeout: 10s
  cache:
    backend: file
    dir: linkmeta-cache
    max_age:
      article: 72h
  social_api:
    base_url: https://api.example.com
    rate_per_second: 1
  reader:
    enabled: true
  server:
    addr: ":8080"
    rate_per_second: 20
    burst: 40
`
