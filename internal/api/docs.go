package api

const docsHTML = `<!doctype html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="utf-8" />
  <meta name="referrer" content="same-origin" />
  <meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no" />
  <title>Contribute Smoke Controller API</title>
  <link href="https://unpkg.com/@stoplight/elements@9.0.0/styles.min.css" rel="stylesheet" />
  <script src="https://unpkg.com/@stoplight/elements@9.0.0/web-components.min.js" crossorigin="anonymous"></script>
</head>
<body style="height: 100vh; margin: 0; position: relative;">
  <a href="/api/v1/events?feeds=scenario,run" target="_blank" style="position: fixed; top: 12px; right: 16px; z-index: 9999; color: #58a6ff; font-family: sans-serif; font-size: 12px;">Live run events</a>
  <elements-api
    apiDescriptionUrl="/openapi.json"
    router="hash"
    layout="sidebar"
    tryItCredentialsPolicy="same-origin"
    darkMode
  />
</body>
</html>`
